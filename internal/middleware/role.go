package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/model"
)

// RequireRole enforces that the authenticated user holds one of the
// given roles. It assumes Authenticate ran earlier in the chain; a
// request with no user or a disallowed role is rejected with 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !allowed[u.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAdmin admits ADMIN-role users and accounts flagged is_admin.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || (!u.IsAdmin && u.Role != model.RoleAdmin) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
