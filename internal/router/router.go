// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/TheSmitCode/funwhine/internal/auth"
	"github.com/TheSmitCode/funwhine/internal/config"
	"github.com/TheSmitCode/funwhine/internal/handler"
	"github.com/TheSmitCode/funwhine/internal/middleware"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Auth   *handler.AuthHandler
	Prefs  *handler.PrefsHandler
	Blocks *handler.BlockHandler
	Intake *handler.IntakeHandler
	Admin  *handler.AdminHandler
}

// Register wires all routes. Login is rate limited; block and intake
// reads are cached per user. Everything except login and the health
// check requires an authenticated active account, and the admin group
// additionally requires an administrator.
func Register(e *echo.Echo, cfg config.Config, a *auth.Authenticator, rdb *redis.Client, h Handlers) {
	if cfg.CORSOrigin != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.CORSOrigin},
			AllowCredentials: true,
		}))
	}

	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1")

	login := api.Group("/auth")
	login.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	login.POST("/login", h.Auth.Login)
	login.POST("/logout", h.Auth.Logout)

	protected := api.Group("", middleware.Authenticate(a))
	protected.GET("/auth/me", h.Auth.Me)
	protected.GET("/me", h.Auth.Me)
	protected.PATCH("/me/preferences", h.Prefs.Update)

	cache := middleware.CacheGET(config.LoadCacheConfig(), rdb)

	intake := protected.Group("/intake")
	intake.POST("/blocks", h.Blocks.Create)
	intake.GET("/blocks", h.Blocks.List, cache)
	intake.GET("/blocks/:id", h.Blocks.Get, cache)
	intake.PATCH("/blocks/:id", h.Blocks.Update)
	intake.DELETE("/blocks/:id", h.Blocks.Delete)
	intake.POST("/blocks/:id/subdivisions", h.Blocks.CreateSubdivision)
	intake.GET("/blocks/:id/subdivisions", h.Blocks.ListSubdivisions, cache)

	intake.POST("/intakes", h.Intake.Create)
	intake.GET("/intakes", h.Intake.List, cache)
	intake.GET("/intakes/:id", h.Intake.Get, cache)
	intake.DELETE("/intakes/:id", h.Intake.Delete)

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.POST("/users", h.Admin.CreateUser)
	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/users/:id", h.Admin.GetUser)
	admin.PATCH("/users/:id", h.Admin.UpdateUser)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
}
