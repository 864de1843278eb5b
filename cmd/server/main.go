package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/trulyapp/truly-backend/internal/ai"
	"github.com/trulyapp/truly-backend/internal/config"
	"github.com/trulyapp/truly-backend/internal/database"
	"github.com/trulyapp/truly-backend/internal/logging"
	"github.com/trulyapp/truly-backend/internal/middleware"
	"github.com/trulyapp/truly-backend/internal/onboarding"
	"github.com/trulyapp/truly-backend/internal/realms"
	"github.com/trulyapp/truly-backend/internal/realms/circles"
	"github.com/trulyapp/truly-backend/internal/realms/garden"
	"github.com/trulyapp/truly-backend/internal/realms/heartprint"
	"github.com/trulyapp/truly-backend/internal/realms/journal"
	"github.com/trulyapp/truly-backend/internal/realms/lantern"
	"github.com/trulyapp/truly-backend/internal/realms/lullaby"
	"github.com/trulyapp/truly-backend/internal/realms/mindmap"
	"github.com/trulyapp/truly-backend/internal/realms/origin"
	"github.com/trulyapp/truly-backend/internal/realms/twin"
	"github.com/trulyapp/truly-backend/internal/routes"
	"github.com/trulyapp/truly-backend/internal/services"
	"github.com/trulyapp/truly-backend/internal/speech"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Realm catalog
	registry, err := realms.LoadRegistry(cfg.RealmsConfigPath)
	if err != nil {
		slog.Error("failed to load realm catalog", "path", cfg.RealmsConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("realm catalog loaded", "realms", registry.Count())

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateModels([]any{&onboarding.CompletionRecord{}}); err != nil {
		slog.Error("onboarding migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Services and external clients
	authService := services.NewAuthService(database.DB, cfg)
	subscriptionService := services.NewSubscriptionService(database.DB)
	moderationService := services.NewModerationService(database.DB)
	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, cfg.OpenAIModel, cfg.AITimeout)
	speechClient := speech.NewClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsAPIURL, cfg.ElevenLabsVoiceID)

	if err := authService.SeedDemoUser(); err != nil {
		slog.Error("demo account seeding failed", "error", err)
	}

	// Onboarding flow
	completionStore := onboarding.NewGormStore(database.DB)
	flowManager := onboarding.NewManager(completionStore, onboarding.DefaultTimings(), slog.Default())
	onboardingHandler := onboarding.NewHandler(flowManager, authService, completionStore, cfg)

	// Realm plugins
	plugins := []realms.Plugin{
		twin.New(),
		lullaby.New(),
		lantern.New(),
		garden.New(),
		journal.New(),
		mindmap.New(),
		circles.New(),
		heartprint.New(),
		origin.New(),
	}

	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("realm migration failed", "realm", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("realm migrated", "realm", p.ID(), "models", len(models))
		}
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, &routes.Deps{
		DB:         database.DB,
		Cfg:        cfg,
		Registry:   registry,
		Auth:       authService,
		Subs:       subscriptionService,
		Moderation: moderationService,
		Onboarding: onboardingHandler,
		Plugins:    plugins,
		PluginDeps: &realms.Deps{
			DB:         database.DB,
			Cfg:        cfg,
			AI:         aiClient,
			Speech:     speechClient,
			Subs:       subscriptionService,
			Moderation: moderationService,
			Registry:   registry,
		},
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	flowManager.Stop()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
