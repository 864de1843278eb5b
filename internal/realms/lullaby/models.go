package lullaby

import (
	"time"

	"github.com/google/uuid"
)

// Lullaby is one generated soothing passage, kept so users can revisit
// past nights.
type Lullaby struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Emotion   string    `gorm:"not null;size:20" json:"emotion"`
	Text      string    `gorm:"not null;type:text" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (Lullaby) TableName() string {
	return "lullabies"
}
