package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/auth"
	"github.com/TheSmitCode/funwhine/internal/config"
	"github.com/TheSmitCode/funwhine/internal/database"
	"github.com/TheSmitCode/funwhine/internal/handler"
	"github.com/TheSmitCode/funwhine/internal/queue"
	"github.com/TheSmitCode/funwhine/internal/repository"
	"github.com/TheSmitCode/funwhine/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	blocks := repository.NewBlockRepo(db)
	intakes := repository.NewIntakeRepo(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm)
	authn := auth.NewAuthenticator(users, tokens, cfg.CookieName, cfg.AccessTTLMin)

	e := echo.New()
	router.Register(e, cfg, authn, rdb, router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, authn),
		Prefs:  handler.NewPrefsHandler(users),
		Blocks: handler.NewBlockHandler(blocks),
		Intake: handler.NewIntakeHandler(intakes),
		Admin:  handler.NewAdminHandler(cfg, users),
	})

	// Journal intake events in the background; the consumer reconnects
	// on its own and never stops the server.
	go func() {
		if err := queue.StartIntakeConsumer(); err != nil {
			log.Printf("intake-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
