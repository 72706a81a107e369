package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/middleware"
	"github.com/TheSmitCode/funwhine/internal/model"
	"github.com/TheSmitCode/funwhine/internal/repository"
)

// PrefsHandler updates the current user's UI preferences.
type PrefsHandler struct {
	Users *repository.UserRepo
}

// NewPrefsHandler wires the handler.
func NewPrefsHandler(users *repository.UserRepo) *PrefsHandler {
	return &PrefsHandler{Users: users}
}

type prefsReq struct {
	UITheme      *string         `json:"ui_theme"`
	UISidebar    *bool           `json:"ui_sidebar"`
	UINavbar     *bool           `json:"ui_navbar"`
	UIFontScale  *string         `json:"ui_font_scale"`
	UISimpleMode *bool           `json:"ui_simple_mode"`
	UIFeatures   map[string]bool `json:"ui_features"`
}

func (r prefsReq) empty() bool {
	return r.UITheme == nil && r.UISidebar == nil && r.UINavbar == nil &&
		r.UIFontScale == nil && r.UISimpleMode == nil && r.UIFeatures == nil
}

// Update applies the preference fields present in the body onto the
// current user. Only preference fields are accepted here; everything
// else about the account goes through the admin endpoints. A body with
// no preference fields at all is a 400.
func (h *PrefsHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	var req prefsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no preference fields provided"})
	}
	updated, err := h.Users.Update(c.Request().Context(), u, model.UserUpdate{
		UITheme:      req.UITheme,
		UISidebar:    req.UISidebar,
		UINavbar:     req.UINavbar,
		UIFontScale:  req.UIFontScale,
		UISimpleMode: req.UISimpleMode,
		UIFeatures:   req.UIFeatures,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
