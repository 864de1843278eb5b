package heartprint

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/ai"
	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/realms"
)

const affirmationPrompt = "You are a gentle, compassionate presence offering personalized affirmations. Your words should validate emotions, offer comfort, and inspire hope. Keep responses under 150 words and make them feel deeply personal and healing."

const fallbackAffirmation = "Your feelings are valid and worthy of honor. You are exactly where you need to be in this moment, and you have the strength to move through whatever you're experiencing."

// Reflection is one heartprint: a mood, an energy level, and an optional
// note, answered with a generated affirmation.
type Reflection struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Mood        string    `gorm:"not null;size:30" json:"mood"`
	Energy      int       `gorm:"not null" json:"energy"`
	Note        string    `gorm:"size:500" json:"note"`
	Affirmation string    `gorm:"type:text" json:"affirmation"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Reflection) TableName() string {
	return "heartprint_reflections"
}

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "heartprint"
}

func (p *Plugin) Models() []any {
	return []any{&Reflection{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	h := &handler{db: deps.DB, ai: deps.AI}

	router.Post("/reflections", h.record)
	router.Get("/reflections", h.list)
	router.Get("/summary", h.summary)
}

type handler struct {
	db *gorm.DB
	ai *ai.Client
}

func (h *handler) record(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req struct {
		Mood   string `json:"mood"`
		Energy int    `json:"energy"`
		Note   string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	mood := strings.TrimSpace(req.Mood)
	if mood == "" {
		return errJSON(c, fiber.StatusBadRequest, "mood is required")
	}
	if req.Energy < 1 || req.Energy > 10 {
		return errJSON(c, fiber.StatusBadRequest, "energy must be between 1 and 10")
	}

	reflection := Reflection{
		UserID:      userID,
		Mood:        mood,
		Energy:      req.Energy,
		Note:        strings.TrimSpace(req.Note),
		Affirmation: h.affirmation(c.UserContext(), userID, mood, req.Note),
	}
	if err := h.db.Create(&reflection).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.Status(fiber.StatusCreated).JSON(reflection)
}

func (h *handler) affirmation(ctx context.Context, userID uuid.UUID, mood, note string) string {
	prompt := fmt.Sprintf("The user is feeling %s. Create a gentle, personalized affirmation that validates their feelings and offers hope.", mood)
	if note = strings.TrimSpace(note); note != "" {
		prompt = fmt.Sprintf("The user is feeling %s. Context: %s. Create a gentle, personalized affirmation that validates their feelings and offers hope.", mood, note)
	}

	text, err := h.ai.Chat(ctx, []ai.Message{
		{Role: "system", Content: affirmationPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		slog.Error("affirmation generation failed", "realm", "heartprint", "action", "heartprint.affirmation",
			"user_id", userID.String(), "error", err.Error())
		return fallbackAffirmation
	}
	return text
}

func (h *handler) list(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var reflections []Reflection
	err = h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(90).
		Find(&reflections).Error
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"reflections": reflections})
}

// summary aggregates the last 30 days by mood.
func (h *handler) summary(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}

	type moodCount struct {
		Mood      string  `json:"mood"`
		Count     int64   `json:"count"`
		AvgEnergy float64 `json:"avg_energy"`
	}
	var counts []moodCount
	err = h.db.Model(&Reflection{}).
		Select("mood, count(*) as count, avg(energy) as avg_energy").
		Where("user_id = ? AND created_at > ?", userID, time.Now().AddDate(0, 0, -30)).
		Group("mood").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"moods": counts})
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
