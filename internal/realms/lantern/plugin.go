package lantern

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/realms"
)

// Wish is one hope written onto a lantern and released into the night sky.
type Wish struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Text       string    `gorm:"not null;size:500" json:"text"`
	ReleasedAt time.Time `gorm:"autoCreateTime" json:"released_at"`
}

func (Wish) TableName() string {
	return "lantern_wishes"
}

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "lantern"
}

func (p *Plugin) Models() []any {
	return []any{&Wish{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	h := &handler{db: deps.DB}

	router.Post("/wishes", h.release)
	router.Get("/wishes", h.list)
}

type handler struct {
	db *gorm.DB
}

func (h *handler) release(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return errJSON(c, fiber.StatusBadRequest, "a wish needs words")
	}
	if len(text) > 500 {
		return errJSON(c, fiber.StatusBadRequest, "wish is too long")
	}

	wish := Wish{UserID: userID, Text: text}
	if err := h.db.Create(&wish).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.Status(fiber.StatusCreated).JSON(wish)
}

func (h *handler) list(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var wishes []Wish
	err = h.db.Where("user_id = ?", userID).
		Order("released_at DESC").
		Limit(50).
		Find(&wishes).Error
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"wishes": wishes})
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
