// Package middleware contains reusable HTTP middleware: cookie/bearer
// authentication, role enforcement, Redis-backed rate limiting and a
// response cache for read endpoints.
package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/model"
)

// userKey is the context key the authenticated user is stored under.
const userKey = "user"

// CurrentUser returns the authenticated user stored by Authenticate,
// or (nil, false) on unauthenticated routes.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userKey).(*model.User)
	return u, ok && u != nil
}

// SetCurrentUser stores u for CurrentUser to read. Authenticate calls
// this after resolving the request; tests build contexts with it.
func SetCurrentUser(c echo.Context, u *model.User) {
	c.Set(userKey, u)
}

// cacheIdentity returns a stable per-user cache key component so cached
// responses are never shared across accounts. Guests share one bucket.
func cacheIdentity(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return "u:" + strconv.FormatUint(u.ID, 10)
	}
	return "guest"
}
