package twin

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/ai"
)

const systemPrompt = "You are a warm, kind AI therapist named Truly Twin who speaks with compassion and emotional clarity. You provide gentle, supportive responses that help users process their emotions and find inner peace. Keep responses thoughtful but concise (under 300 words), focusing on emotional validation and gentle guidance. Speak as if you're a caring friend who truly understands."

const futureSelfPrompt = "You are the user's future self, speaking gently and poetically with wisdom and kindness. Write a short message of encouragement or reflection, as if from a wiser version of the user. Your voice should be loving, understanding, and filled with the perspective that comes from having lived through challenges and growth. Keep your message under 150 words and speak as 'I' addressing your past self as 'you'."

// Only the most recent turns ride along as model context.
const contextWindow = 6

const fallbackReply = "I'm experiencing some technical difficulties right now, but I'm still here with you. Sometimes just knowing someone is listening can be enough. What would feel most supportive for you in this moment?"

const fallbackFutureSelf = "I am always with you, even when the path seems unclear. Trust in your journey, for every step is leading you home to yourself."

var ErrEmptyMessage = errors.New("message is empty")

type Service struct {
	db *gorm.DB
	ai *ai.Client
}

func NewService(db *gorm.DB, aiClient *ai.Client) *Service {
	return &Service{db: db, ai: aiClient}
}

// Send stores the user's message, asks the model with recent history as
// context, and stores the reply. Model failures degrade to a canned
// comforting reply rather than an error.
func (s *Service) Send(ctx context.Context, userID uuid.UUID, text string) (*Message, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	userMsg := Message{UserID: userID, Role: "user", Content: text}
	if err := s.db.Create(&userMsg).Error; err != nil {
		return nil, err
	}

	history, err := s.History(userID, contextWindow)
	if err != nil {
		return nil, err
	}

	msgs := make([]ai.Message, 0, len(history)+1)
	msgs = append(msgs, ai.Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		msgs = append(msgs, ai.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := s.ai.Chat(ctx, msgs)
	if err != nil {
		slog.Error("twin chat failed", "realm", "twin", "action", "twin.chat",
			"user_id", userID.String(), "error", err.Error())
		reply = fallbackReply
	}

	assistantMsg := Message{UserID: userID, Role: "assistant", Content: reply}
	if err := s.db.Create(&assistantMsg).Error; err != nil {
		return nil, err
	}
	return &assistantMsg, nil
}

// FutureSelf answers one-off with the future-self voice; nothing is
// persisted.
func (s *Service) FutureSelf(ctx context.Context, userID uuid.UUID, text string) (string, error) {
	if text == "" {
		return "", ErrEmptyMessage
	}
	reply, err := s.ai.Chat(ctx, []ai.Message{
		{Role: "system", Content: futureSelfPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		slog.Error("future self failed", "realm", "twin", "action", "twin.future_self",
			"user_id", userID.String(), "error", err.Error())
		return fallbackFutureSelf, nil
	}
	return reply, nil
}

// History returns the user's most recent turns in chronological order.
func (s *Service) History(userID uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var messages []Message
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *Service) Clear(userID uuid.UUID) error {
	return s.db.Where("user_id = ?", userID).Delete(&Message{}).Error
}
