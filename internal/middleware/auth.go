package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/auth"
	"github.com/TheSmitCode/funwhine/internal/repository"
)

// Authenticate wraps protected routes. It resolves the request to an
// active account via the authentication facade and stores it in the
// context for handlers to read with CurrentUser. Credential failures
// map to 401 with a message that does not reveal which step failed
// beyond the broad category; a storage failure during subject lookup
// is a 500, not a credential problem.
func Authenticate(a *auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := a.Authenticate(c.Request().Context(), c.Request())
			if err != nil {
				var storageErr *repository.StorageError
				if errors.As(err, &storageErr) {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": authMessage(err)})
			}
			if err := a.RequireActive(u); err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "inactive account"})
			}
			SetCurrentUser(c, u)
			return next(c)
		}
	}
}

func authMessage(err error) string {
	var tokenErr *auth.TokenError
	if errors.As(err, &tokenErr) {
		if tokenErr.Kind == auth.TokenExpired {
			return "token expired"
		}
		return "invalid token"
	}
	return "not authenticated"
}
