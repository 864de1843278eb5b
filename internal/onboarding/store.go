package onboarding

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRecordNotFound = errors.New("completion record not found")

// CompletionStore is the durable per-user key-value contract the flow
// depends on. Any store keyed by user id satisfies it.
type CompletionStore interface {
	Get(userID uuid.UUID) (*CompletionRecord, error)
	Set(userID uuid.UUID, badgeID string) error
}

// GormStore persists completion records in Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(userID uuid.UUID) (*CompletionRecord, error) {
	var record CompletionRecord
	err := s.db.Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Set upserts the record. Last write wins across devices.
func (s *GormStore) Set(userID uuid.UUID, badgeID string) error {
	record := CompletionRecord{
		UserID:    userID,
		Completed: true,
		BadgeID:   badgeID,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "badge_id", "updated_at"}),
	}).Create(&record).Error
}
