package onboarding

import (
	"time"

	"github.com/google/uuid"
)

// CompletionRecord is the per-user onboarding flag plus the badge assigned
// at discovery completion. Written once; returning users skip discovery.
type CompletionRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	BadgeID   string    `gorm:"not null;size:20" json:"badge_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CompletionRecord) TableName() string {
	return "onboarding_completions"
}
