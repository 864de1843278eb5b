package mindmap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/ai"
	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/realms"
)

const expandPrompt = "You are a gentle guide helping someone explore their inner landscape through a mind map. Given a feeling or concept, respond with a JSON array of 4 to 6 short related concepts (2-4 words each) that invite deeper, compassionate self-reflection. Respond with only the JSON array, no other text."

// Map is a saved constellation of connected thoughts.
type Map struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string         `gorm:"not null;size:200" json:"title"`
	Nodes     datatypes.JSON `gorm:"type:jsonb" json:"nodes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Map) TableName() string {
	return "mind_maps"
}

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "mindmap"
}

func (p *Plugin) Models() []any {
	return []any{&Map{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	h := &handler{db: deps.DB, ai: deps.AI}

	router.Post("/expand", h.expand)
	router.Post("/maps", h.save)
	router.Get("/maps", h.list)
	router.Delete("/maps/:id", h.remove)
}

type handler struct {
	db *gorm.DB
	ai *ai.Client
}

// expand asks the model for related concepts around a node. A model
// failure degrades to a small fixed set so the map never dead-ends.
func (h *handler) expand(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req struct {
		Concept string `json:"concept"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	concept := strings.TrimSpace(req.Concept)
	if concept == "" {
		return errJSON(c, fiber.StatusBadRequest, "concept is required")
	}

	return c.JSON(fiber.Map{"concepts": h.relatedConcepts(c.UserContext(), userID, concept)})
}

func (h *handler) relatedConcepts(ctx context.Context, userID uuid.UUID, concept string) []string {
	raw, err := h.ai.ChatJSON(ctx, []ai.Message{
		{Role: "system", Content: expandPrompt},
		{Role: "user", Content: fmt.Sprintf("Expand: %q", concept)},
	})
	if err == nil {
		var concepts []string
		if jsonErr := json.Unmarshal([]byte(raw), &concepts); jsonErr == nil && len(concepts) > 0 {
			return concepts
		}
		err = fmt.Errorf("unparseable expansion: %.80s", raw)
	}
	slog.Error("mind map expansion failed", "realm", "mindmap", "action", "mindmap.expand",
		"user_id", userID.String(), "error", err.Error())
	return []string{"what this feels like", "where it began", "what it needs", "a gentler view"}
}

func (h *handler) save(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req struct {
		Title string          `json:"title"`
		Nodes json.RawMessage `json:"nodes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" || len(req.Nodes) == 0 {
		return errJSON(c, fiber.StatusBadRequest, "title and nodes are required")
	}

	m := Map{UserID: userID, Title: strings.TrimSpace(req.Title), Nodes: datatypes.JSON(req.Nodes)}
	if err := h.db.Create(&m).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *handler) list(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var maps []Map
	err = h.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&maps).Error
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"maps": maps})
}

func (h *handler) remove(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid map id")
	}
	result := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&Map{})
	if result.Error != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	if result.RowsAffected == 0 {
		return errJSON(c, fiber.StatusNotFound, "map not found")
	}
	return c.JSON(fiber.Map{"success": true})
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
