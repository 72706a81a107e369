// Package handler implements the HTTP endpoints. Handlers bind and
// validate request bodies, call into the repositories and the auth
// facade, and translate the error taxonomy into stable status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/auth"
	"github.com/TheSmitCode/funwhine/internal/repository"
)

// writeError maps the shared error taxonomy onto HTTP responses.
// Validation problems are client errors, auth problems unauthorized,
// conflicts 409 and anything storage-shaped a plain 500 whose message
// never echoes driver internals.
func writeError(c echo.Context, err error) error {
	var validation *repository.ValidationError
	if errors.As(err, &validation) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Error()})
	}
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		switch authErr.Kind {
		case auth.InvalidCredentials:
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		case auth.Inactive:
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "inactive account"})
		default:
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
		}
	}
	var tokenErr *auth.TokenError
	if errors.As(err, &tokenErr) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource has dependent records"})
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// pageParams reads offset/limit query parameters; the repository
// clamps the limit to its ceiling.
func pageParams(c echo.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return offset, limit
}
