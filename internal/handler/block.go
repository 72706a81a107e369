package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/model"
	"github.com/TheSmitCode/funwhine/internal/repository"
)

// BlockHandler exposes CRUD for vineyard blocks and their subdivisions.
type BlockHandler struct {
	Blocks *repository.BlockRepo
}

// NewBlockHandler wires the handler.
func NewBlockHandler(blocks *repository.BlockRepo) *BlockHandler {
	return &BlockHandler{Blocks: blocks}
}

// Create adds a block.
func (h *BlockHandler) Create(c echo.Context) error {
	var in model.BlockCreate
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	b, err := h.Blocks.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Get returns one block by id.
func (h *BlockHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Blocks.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "block not found"})
	}
	return c.JSON(http.StatusOK, b)
}

// List returns one page of blocks.
func (h *BlockHandler) List(c echo.Context) error {
	offset, limit := pageParams(c)
	blocks, err := h.Blocks.List(c.Request().Context(), offset, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, blocks)
}

// Update applies a partial update to a block.
func (h *BlockHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	existing, err := h.Blocks.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if existing == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "block not found"})
	}
	var in model.BlockUpdate
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	b, err := h.Blocks.Update(c.Request().Context(), existing, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete removes a block. A block still referenced by intakes is not
// deleted; the repository refuses with a conflict.
func (h *BlockHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Blocks.Remove(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "block not found"})
	}
	return c.JSON(http.StatusOK, b)
}

// CreateSubdivision adds a subdivision under the block in the route.
func (h *BlockHandler) CreateSubdivision(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	parent, err := h.Blocks.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if parent == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "block not found"})
	}
	var in model.BlockSubdivisionCreate
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in.BlockID = id
	sd, err := h.Blocks.Subdivisions.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sd)
}

// ListSubdivisions returns all subdivisions of a block.
func (h *BlockHandler) ListSubdivisions(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	subs, err := h.Blocks.ListSubdivisions(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, subs)
}
