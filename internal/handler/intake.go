package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/middleware"
	"github.com/TheSmitCode/funwhine/internal/model"
	"github.com/TheSmitCode/funwhine/internal/queue"
	"github.com/TheSmitCode/funwhine/internal/repository"
	queue_publisher "github.com/TheSmitCode/funwhine/internal/service"
)

// IntakeHandler exposes the intake aggregate: composite creation,
// paged listing, single fetch and cascade delete.
type IntakeHandler struct {
	Intakes *repository.IntakeRepo
}

// NewIntakeHandler wires the handler.
func NewIntakeHandler(intakes *repository.IntakeRepo) *IntakeHandler {
	return &IntakeHandler{Intakes: intakes}
}

// Create persists an intake with its nested components, additions,
// fruit lines and lab results as one atomic unit, stamped with the
// authenticated user. After the commit an intake.created event is
// published; publish failures never fail the request.
func (h *IntakeHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	var in model.IntakeCreate
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in.CreatedByID = u.ID

	intake, err := h.Intakes.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	_ = queue_publisher.PublishIntakeCreated(c.Request().Context(), queue.IntakeCreatedEvent{
		IntakeID:    intake.ID,
		BlockID:     intake.BlockID,
		CreatedByID: intake.CreatedByID,
		WeightKG:    intake.WeightKG,
		Components:  len(intake.Components),
		Additions:   len(intake.Additions),
		Fruits:      len(intake.Fruits),
		LabResults:  len(intake.LabResults),
		CreatedAt:   intake.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, intake)
}

// List returns one page of intakes, newest first. ?block_id narrows to
// a block, ?mine=true to the caller's own intakes.
func (h *IntakeHandler) List(c echo.Context) error {
	offset, limit := pageParams(c)
	var filter repository.IntakeFilter
	if s := c.QueryParam("block_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid block_id"})
		}
		filter.BlockID = &id
	}
	if c.QueryParam("mine") == "true" {
		u, ok := middleware.CurrentUser(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
		}
		filter.CreatedByID = &u.ID
	}
	intakes, err := h.Intakes.List(c.Request().Context(), offset, limit, filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, intakes)
}

// Get returns one intake with all its children.
func (h *IntakeHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	intake, err := h.Intakes.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if intake == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "intake not found"})
	}
	return c.JSON(http.StatusOK, intake)
}

// Delete removes an intake and all its children.
func (h *IntakeHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	intake, err := h.Intakes.Remove(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if intake == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "intake not found"})
	}
	return c.JSON(http.StatusOK, intake)
}
