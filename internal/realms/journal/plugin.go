package journal

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/realms"
)

// Entry is one sacred journal page. Emotions is a free-form tag list.
type Entry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string         `gorm:"size:200" json:"title"`
	Content   string         `gorm:"not null;type:text" json:"content"`
	Emotions  datatypes.JSON `gorm:"type:jsonb" json:"emotions"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Entry) TableName() string {
	return "journal_entries"
}

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "journal"
}

func (p *Plugin) Models() []any {
	return []any{&Entry{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	h := &handler{db: deps.DB}

	router.Post("/entries", h.create)
	router.Get("/entries", h.list)
	router.Get("/entries/:id", h.get)
	router.Put("/entries/:id", h.update)
	router.Delete("/entries/:id", h.remove)
	router.Delete("/entries", h.clear)
}

type entryRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Emotions []string `json:"emotions"`
}

type handler struct {
	db *gorm.DB
}

func (h *handler) create(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" {
		return errJSON(c, fiber.StatusBadRequest, "content is required")
	}

	emotions, _ := json.Marshal(req.Emotions)
	entry := Entry{
		UserID:   userID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Emotions: emotions,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *handler) list(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var entries []Entry
	err = h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&entries).Error
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (h *handler) get(c *fiber.Ctx) error {
	entry, status, msg := h.ownedEntry(c)
	if entry == nil {
		return errJSON(c, status, msg)
	}
	return c.JSON(entry)
}

func (h *handler) update(c *fiber.Ctx) error {
	entry, status, msg := h.ownedEntry(c)
	if entry == nil {
		return errJSON(c, status, msg)
	}
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" {
		return errJSON(c, fiber.StatusBadRequest, "content is required")
	}

	emotions, _ := json.Marshal(req.Emotions)
	entry.Title = strings.TrimSpace(req.Title)
	entry.Content = req.Content
	entry.Emotions = emotions
	if err := h.db.Save(entry).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(entry)
}

func (h *handler) remove(c *fiber.Ctx) error {
	entry, status, msg := h.ownedEntry(c)
	if entry == nil {
		return errJSON(c, status, msg)
	}
	if err := h.db.Delete(entry).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *handler) clear(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	result := h.db.Where("user_id = ?", userID).Delete(&Entry{})
	if result.Error != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"success": true, "deleted": result.RowsAffected})
}

// ownedEntry loads the entry from the path and verifies ownership.
func (h *handler) ownedEntry(c *fiber.Ctx) (*Entry, int, string) {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return nil, fiber.StatusUnauthorized, "authentication required"
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.StatusBadRequest, "invalid entry id"
	}
	var entry Entry
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		return nil, fiber.StatusNotFound, "entry not found"
	}
	return &entry, 0, ""
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
