package lullaby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/ai"
	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/realms"
	"github.com/trulyapp/truly-backend/internal/speech"
)

const lullabyPrompt = "You are a gentle, nurturing presence creating personalized lullabies and soothing words. Write a calming, poetic reflective passage that acknowledges the user's current emotional state with deep compassion. Your words should feel like a warm embrace, offering comfort, validation, and gentle hope. Use soft, flowing language that feels like being tucked into bed by someone who truly understands. Keep it under 400 words and make it feel deeply personal and healing."

const fallbackLullaby = "Close your eyes, dear heart, and breathe... You are safe in this moment. Let the gentle rhythm of your breath carry you to a place of peace. Tomorrow will bring new light, but for now, rest in the knowing that you are enough, just as you are."

// EmotionalState is one of the four moods a user can bring to lullaby mode.
type EmotionalState struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var emotionalStates = []EmotionalState{
	{Value: "sad", Label: "Sad", Description: "Feeling tender and tearful"},
	{Value: "anxious", Label: "Anxious", Description: "Mind racing with worries"},
	{Value: "heavy", Label: "Heavy", Description: "Carrying the weight of the world"},
	{Value: "numb", Label: "Numb", Description: "Feeling disconnected and empty"},
}

var ErrUnknownEmotion = errors.New("unknown emotional state")

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "lullaby"
}

func (p *Plugin) Models() []any {
	return []any{&Lullaby{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	h := &handler{db: deps.DB, ai: deps.AI, speech: deps.Speech}

	router.Get("/states", h.listStates)
	router.Get("/history", h.history)
	router.Post("/generate", h.generate)
	router.Post("/speak", h.speak)
}

type handler struct {
	db     *gorm.DB
	ai     *ai.Client
	speech *speech.Client
}

func (h *handler) listStates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"states": emotionalStates})
}

func (h *handler) generate(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req struct {
		Emotion string `json:"emotion"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	state, err := stateByValue(req.Emotion)
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "unknown emotional state")
	}

	text := h.generateText(c.UserContext(), userID, state)
	record := Lullaby{UserID: userID, Emotion: state.Value, Text: text}
	if err := h.db.Create(&record).Error; err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *handler) generateText(ctx context.Context, userID uuid.UUID, state EmotionalState) string {
	prompt := fmt.Sprintf(
		"The user is feeling %s - %s. Create a gentle, personalized lullaby or soothing passage that acknowledges this specific emotional state with deep compassion and offers comfort.",
		state.Value, state.Description)

	text, err := h.ai.Chat(ctx, []ai.Message{
		{Role: "system", Content: lullabyPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		slog.Error("lullaby generation failed", "realm", "lullaby", "action", "lullaby.generate",
			"user_id", userID.String(), "error", err.Error())
		return fallbackLullaby
	}
	return text
}

// speak narrates a stored lullaby. Returns 503 when no speech backend is
// configured so the client falls back to silent reading.
func (h *handler) speak(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var req struct {
		LullabyID uuid.UUID `json:"lullaby_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	var record Lullaby
	if err := h.db.Where("id = ? AND user_id = ?", req.LullabyID, userID).First(&record).Error; err != nil {
		return errJSON(c, fiber.StatusNotFound, "lullaby not found")
	}

	audio, err := h.speech.Synthesize(c.UserContext(), record.Text)
	if err != nil {
		if errors.Is(err, speech.ErrNotConfigured) {
			return errJSON(c, fiber.StatusServiceUnavailable, "speech synthesis unavailable")
		}
		slog.Error("lullaby narration failed", "realm", "lullaby", "action", "lullaby.speak",
			"user_id", userID.String(), "error", err.Error())
		return errJSON(c, fiber.StatusBadGateway, "speech synthesis failed")
	}

	c.Set("Content-Type", "audio/mpeg")
	return c.Send(audio)
}

func (h *handler) history(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	var records []Lullaby
	err = h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(20).
		Find(&records).Error
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{"lullabies": records})
}

func stateByValue(value string) (EmotionalState, error) {
	for _, s := range emotionalStates {
		if s.Value == value {
			return s, nil
		}
	}
	return EmotionalState{}, ErrUnknownEmotion
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
