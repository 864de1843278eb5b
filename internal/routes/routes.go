package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/config"
	"github.com/trulyapp/truly-backend/internal/handlers"
	"github.com/trulyapp/truly-backend/internal/middleware"
	"github.com/trulyapp/truly-backend/internal/onboarding"
	"github.com/trulyapp/truly-backend/internal/realms"
	"github.com/trulyapp/truly-backend/internal/services"
)

// Deps bundles everything route setup needs.
type Deps struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Registry   *realms.Registry
	Auth       *services.AuthService
	Subs       *services.SubscriptionService
	Moderation *services.ModerationService
	Onboarding *onboarding.Handler
	Plugins    []realms.Plugin
	PluginDeps *realms.Deps
}

// Setup mounts every route group: health and legal pages, auth, the
// onboarding flow, webhooks, moderation, and one sub-group per realm
// plugin under /p.
func Setup(app *fiber.App, deps *Deps) {
	generalLimiter := limiter.New(limiter.Config{
		Max:               60,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
	})
	authLimiter := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
	})

	healthHandler := handlers.NewHealthHandler(deps.Registry)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Subs)
	webhookHandler := handlers.NewWebhookHandler(deps.Subs, deps.Cfg)
	moderationHandler := handlers.NewModerationHandler(deps.Moderation)
	legalHandler := handlers.NewLegalHandler()

	app.Get("/health", healthHandler.Check)
	app.Get("/legal/privacy", legalHandler.Privacy)
	app.Get("/legal/terms", legalHandler.Terms)

	auth := app.Group("/auth", authLimiter)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	me := app.Group("/me", generalLimiter, middleware.JWTProtected(deps.Cfg.JWTSecret))
	me.Get("/", authHandler.Me)
	me.Delete("/", authHandler.DeleteAccount)

	// Onboarding is reachable anonymously: poetry and the login gate
	// come before any token exists.
	flow := app.Group("/onboarding", generalLimiter, middleware.OptionalJWT(deps.Cfg.JWTSecret))
	deps.Onboarding.RegisterRoutes(flow)

	app.Post("/webhooks/revenuecat", webhookHandler.RevenueCat)

	moderation := app.Group("/moderation", generalLimiter, middleware.JWTProtected(deps.Cfg.JWTSecret))
	moderation.Post("/reports", moderationHandler.Report)
	moderation.Post("/blocks", moderationHandler.Block)
	moderation.Delete("/blocks", moderationHandler.Unblock)

	adminHandler := handlers.NewAdminHandler(deps.DB)
	admin := app.Group("/admin", middleware.OptionalJWT(deps.Cfg.JWTSecret), middleware.AdminRequired(deps.Cfg))
	admin.Get("/logs", adminHandler.ListLogs)
	admin.Get("/reports", adminHandler.ListReports)
	admin.Patch("/reports/:id", adminHandler.ResolveReport)

	// Realm catalog plus one mount per plugin. Premium realms get the
	// subscription gate in front.
	protected := app.Group("/p", generalLimiter, middleware.JWTProtected(deps.Cfg.JWTSecret))
	protected.Get("/realms", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"realms": deps.Registry.All()})
	})
	for _, plugin := range deps.Plugins {
		group := protected.Group("/" + plugin.ID())
		if deps.Registry.IsPremium(plugin.ID()) {
			group.Use(middleware.PremiumRequired(deps.Subs))
		}
		plugin.RegisterRoutes(group, deps.PluginDeps)
	}
}
