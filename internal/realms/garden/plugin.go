package garden

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

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "garden"
}

func (p *Plugin) Models() []any {
	return []any{&Plant{}, &SoftNote{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	h := &handler{db: deps.DB, moderation: deps.Moderation}

	router.Post("/plants", h.plant)
	router.Get("/plants", h.myPlants)
	router.Get("/shared", h.sharedGarden)
	router.Post("/plants/:id/notes", h.leaveNote)
	router.Get("/plants/:id/notes", h.listNotes)
}

type handler struct {
	db         *gorm.DB
	moderation *services.ModerationService
}

func (h *handler) plant(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req struct {
		Thought string `json:"thought"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	thought := strings.TrimSpace(req.Thought)
	if thought == "" {
		return errJSON(c, fiber.StatusBadRequest, "thought is required")
	}

	plant := Plant{UserID: userID, Thought: thought}
	if err := h.db.Create(&plant).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	plant.Stage = stageFor(0)
	return c.Status(fiber.StatusCreated).JSON(plant)
}

func (h *handler) myPlants(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var plants []Plant
	err = h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plants).Error
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	fillStages(plants)
	return c.JSON(fiber.Map{"plants": plants})
}

// sharedGarden is the communal view: recent plants from everyone, with
// blocked users' plants hidden.
func (h *handler) sharedGarden(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}

	query := h.db.Order("created_at DESC").Limit(60)
	if blocked, err := h.moderation.BlockedIDs(userID); err == nil && len(blocked) > 0 {
		query = query.Where("user_id NOT IN ?", blocked)
	}

	var plants []Plant
	if err := query.Find(&plants).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	fillStages(plants)
	return c.JSON(fiber.Map{"plants": plants})
}

func (h *handler) leaveNote(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	plantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid plant id")
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return errJSON(c, fiber.StatusBadRequest, "text is required")
	}

	var plant Plant
	if err := h.db.First(&plant, "id = ?", plantID).Error; err != nil {
		return errJSON(c, fiber.StatusNotFound, "plant not found")
	}

	note := SoftNote{PlantID: plantID, AuthorID: userID, Text: text}
	if err := h.db.Create(&note).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *handler) listNotes(c *fiber.Ctx) error {
	if _, err := identity.GetUserID(c); err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	plantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid plant id")
	}
	var notes []SoftNote
	err = h.db.Where("plant_id = ?", plantID).
		Order("created_at ASC").
		Find(&notes).Error
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"notes": notes})
}

func fillStages(plants []Plant) {
	now := time.Now()
	for i := range plants {
		plants[i].Stage = stageFor(now.Sub(plants[i].CreatedAt))
		if plants[i].Stage == "bloom" {
			plants[i].BloomMessage = bloomMessageFor(plants[i].ID)
		}
	}
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
