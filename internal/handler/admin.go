package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/config"
	"github.com/TheSmitCode/funwhine/internal/model"
	"github.com/TheSmitCode/funwhine/internal/repository"
)

// AdminHandler manages user accounts. All routes are gated by the
// admin middleware.
type AdminHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

// NewAdminHandler wires the handler.
func NewAdminHandler(cfg config.Config, users *repository.UserRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: users}
}

// CreateUser registers an account. The password is hashed with the
// configured bcrypt cost before the row is written.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var in model.UserCreate
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	u, err := h.Users.Create(c.Request().Context(), in, h.Cfg.BcryptCost)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// ListUsers returns one page of accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	offset, limit := pageParams(c)
	users, err := h.Users.List(c.Request().Context(), offset, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns one account by id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateUser applies a partial update: role changes, activation and
// deactivation, profile fields. Fields absent from the body are left
// untouched.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	existing, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if existing == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	var in model.UserUpdate
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	u, err := h.Users.Update(c.Request().Context(), existing, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteUser hard-deletes an account. Soft-disable via is_active is
// the normal path; this exists for cleanup of mistaken registrations.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	u, err := h.Users.Remove(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, u)
}
