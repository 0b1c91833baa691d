package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"trail-profile-service/internal/auth"
	"trail-profile-service/internal/config"
	"trail-profile-service/internal/database"
	"trail-profile-service/internal/handler"
	"trail-profile-service/internal/middleware"
	"trail-profile-service/internal/repository"
	"trail-profile-service/internal/service"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache and rate limiting", "error", err)
	}

	verifier := auth.NewVerifier(cfg.AuthAPIURL)
	repo := repository.NewProfileRepository(db)
	svc := service.NewProfileService(repo, rdb)
	h := handler.NewProfileHandler(svc)

	app := fiber.New(fiber.Config{
		AppName:      "Trail Profile Service",
		ServerHeader: "Profile-Service",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found", "error", err)
	} else {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	app.Get("/health", h.Health)

	api := app.Group("/api", middleware.BasicAuth(verifier))
	if rdb != nil {
		rl := middleware.NewRateLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindowSeconds)
		api.Use(rl.Handler())
	}

	// Profiles
	api.Post("/profiles", h.CreateUser)
	api.Get("/profiles/:id", h.GetUser)
	api.Put("/profiles/:id", h.UpdateUser)
	api.Delete("/profiles/:id", h.DeleteUser)

	// Activity preferences
	api.Post("/profiles/:id/activity", h.AddActivity)
	api.Post("/profiles/:id", h.UpdatePreferences)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutting down profile service...")
		_ = app.Shutdown()
	}()

	addr := ":" + cfg.Port
	slog.Info("starting profile service", "addr", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
