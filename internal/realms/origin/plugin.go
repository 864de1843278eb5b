package origin

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/realms"
	"github.com/trulyapp/truly-backend/internal/services"
)

// Note is one anonymous entry on the shared origin wall: gratitude,
// stories, and feedback about the space itself.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Content   string    `gorm:"not null;size:1000" json:"content"`
	Hearts    int       `gorm:"not null;default:0" json:"hearts"`
	CreatedAt time.Time `json:"created_at"`
}

func (Note) TableName() string {
	return "origin_notes"
}

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "origin"
}

func (p *Plugin) Models() []any {
	return []any{&Note{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	h := &handler{db: deps.DB, moderation: deps.Moderation}

	router.Get("/wall", h.wall)
	router.Post("/wall", h.post)
	router.Post("/wall/:id/heart", h.heart)
}

type handler struct {
	db         *gorm.DB
	moderation *services.ModerationService
}

func (h *handler) wall(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}

	query := h.db.Order("created_at DESC").Limit(100)
	if blocked, err := h.moderation.BlockedIDs(userID); err == nil && len(blocked) > 0 {
		query = query.Where("user_id NOT IN ?", blocked)
	}

	var notes []Note
	if err := query.Find(&notes).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"notes": notes})
}

func (h *handler) post(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return errJSON(c, fiber.StatusBadRequest, "content is required")
	}
	if err := h.moderation.CheckContent(content); err != nil {
		return errJSON(c, fiber.StatusUnprocessableEntity, "note contains blocked language")
	}

	note := Note{UserID: userID, Content: content}
	if err := h.db.Create(&note).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *handler) heart(c *fiber.Ctx) error {
	if _, err := identity.GetUserID(c); err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid note id")
	}

	result := h.db.Model(&Note{}).Where("id = ?", id).
		UpdateColumn("hearts", gorm.Expr("hearts + 1"))
	if result.Error != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	if result.RowsAffected == 0 {
		return errJSON(c, fiber.StatusNotFound, "note not found")
	}
	return c.JSON(fiber.Map{"success": true})
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
