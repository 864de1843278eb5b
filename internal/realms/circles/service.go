package circles

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/services"
)

var (
	ErrCircleNotFound  = errors.New("circle not found")
	ErrNotMember       = errors.New("join the circle first")
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyContent    = errors.New("content is empty")
)

type Service struct {
	db         *gorm.DB
	hub        *Hub
	moderation *services.ModerationService
}

func NewService(db *gorm.DB, hub *Hub, moderation *services.ModerationService) *Service {
	return &Service{db: db, hub: hub, moderation: moderation}
}

func (s *Service) Circles() []Circle {
	return catalog
}

// Join assigns the user a persistent anonymous name in the circle.
// Joining twice returns the existing membership.
func (s *Service) Join(userID uuid.UUID, circleID string) (*Membership, error) {
	if _, ok := circleByID(circleID); !ok {
		return nil, ErrCircleNotFound
	}

	var existing Membership
	err := s.db.Where("user_id = ? AND circle_id = ?", userID, circleID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	membership := Membership{
		UserID:        userID,
		CircleID:      circleID,
		AnonymousName: anonymousNames[rand.Intn(len(anonymousNames))],
	}
	if err := s.db.Create(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// Leave removes the membership. The anonymous name is not reserved, so
// rejoining may assign a different one.
func (s *Service) Leave(userID uuid.UUID, circleID string) error {
	if _, ok := circleByID(circleID); !ok {
		return ErrCircleNotFound
	}
	return s.db.Where("user_id = ? AND circle_id = ?", userID, circleID).
		Delete(&Membership{}).Error
}

func (s *Service) membership(userID uuid.UUID, circleID string) (*Membership, error) {
	var m Membership
	err := s.db.Where("user_id = ? AND circle_id = ?", userID, circleID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Post stores the message under the member's anonymous name and pushes it
// to live subscribers.
func (s *Service) Post(userID uuid.UUID, circleID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if err := s.moderation.CheckContent(content); err != nil {
		return nil, err
	}
	m, err := s.membership(userID, circleID)
	if err != nil {
		return nil, err
	}

	msg := Message{
		CircleID:    circleID,
		UserID:      userID,
		DisplayName: m.AnonymousName,
		Content:     content,
		Reactions:   []byte("{}"),
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}

	s.hub.Broadcast(Event{Type: "message", CircleID: circleID, Payload: msg})
	return &msg, nil
}

// Messages returns the recent feed, oldest first, with blocked authors
// filtered out.
func (s *Service) Messages(userID uuid.UUID, circleID string, limit int) ([]Message, error) {
	if _, ok := circleByID(circleID); !ok {
		return nil, ErrCircleNotFound
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.db.Where("circle_id = ?", circleID).Order("created_at DESC").Limit(limit)
	if blocked, err := s.moderation.BlockedIDs(userID); err == nil && len(blocked) > 0 {
		query = query.Where("user_id NOT IN ?", blocked)
	}

	var messages []Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// React bumps the emoji's count on the message.
func (s *Service) React(userID uuid.UUID, messageID uuid.UUID, emoji string) (*Message, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, ErrEmptyContent
	}

	var msg Message
	if err := s.db.First(&msg, "id = ?", messageID).Error; err != nil {
		return nil, ErrMessageNotFound
	}
	if _, err := s.membership(userID, msg.CircleID); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	if len(msg.Reactions) > 0 {
		_ = json.Unmarshal(msg.Reactions, &counts)
	}
	counts[emoji]++
	updated, err := json.Marshal(counts)
	if err != nil {
		return nil, err
	}
	msg.Reactions = updated
	if err := s.db.Model(&msg).Update("reactions", msg.Reactions).Error; err != nil {
		return nil, err
	}

	s.hub.Broadcast(Event{Type: "reaction", CircleID: msg.CircleID, Payload: msg})
	return &msg, nil
}

func (s *Service) Reply(userID uuid.UUID, messageID uuid.UUID, content string) (*Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if err := s.moderation.CheckContent(content); err != nil {
		return nil, err
	}

	var msg Message
	if err := s.db.First(&msg, "id = ?", messageID).Error; err != nil {
		return nil, ErrMessageNotFound
	}
	m, err := s.membership(userID, msg.CircleID)
	if err != nil {
		return nil, err
	}

	reply := Reply{
		MessageID:   messageID,
		UserID:      userID,
		DisplayName: m.AnonymousName,
		Content:     content,
	}
	if err := s.db.Create(&reply).Error; err != nil {
		return nil, err
	}

	s.hub.Broadcast(Event{Type: "reply", CircleID: msg.CircleID, Payload: reply})
	return &reply, nil
}

func (s *Service) Replies(messageID uuid.UUID) ([]Reply, error) {
	var replies []Reply
	err := s.db.Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}
