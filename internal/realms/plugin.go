package realms

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/ai"
	"github.com/trulyapp/truly-backend/internal/config"
	"github.com/trulyapp/truly-backend/internal/services"
	"github.com/trulyapp/truly-backend/internal/speech"
)

// Deps carries the shared infrastructure a realm plugin may wire into
// its routes.
type Deps struct {
	DB         *gorm.DB
	Cfg        *config.Config
	AI         *ai.Client
	Speech     *speech.Client
	Subs       *services.SubscriptionService
	Moderation *services.ModerationService
	Registry   *Registry
}

// Plugin is one self-contained realm of the app (twin chat, lullaby,
// journal, circles, ...). Each plugin owns its models and mounts its
// routes under /p/<id>.
type Plugin interface {
	ID() string
	Models() []any
	RegisterRoutes(router fiber.Router, deps *Deps)
}
