package garden

import (
	"time"

	"github.com/google/uuid"
)

// Plant is one thought planted in the shared garden. Growth is a function
// of age, computed on read.
type Plant struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Thought      string    `gorm:"not null;size:500" json:"thought"`
	Stage        string    `gorm:"-" json:"stage"`
	BloomMessage string    `gorm:"-" json:"bloom_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Plant) TableName() string {
	return "garden_plants"
}

// SoftNote is a small kindness left on someone's plant.
type SoftNote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PlantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"plant_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"-"`
	Text      string    `gorm:"not null;size:280" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (SoftNote) TableName() string {
	return "garden_soft_notes"
}

var poeticMessages = []string{
	"A soul bloomed here...",
	"Love whispered through petals...",
	"Dreams took root in this moment...",
	"Hope blossomed from the heart...",
	"Gentle courage flowered here...",
	"A tender story found its voice...",
	"Beauty emerged from vulnerability...",
	"Light grew from shadow...",
	"Peace bloomed in this space...",
	"Wonder took its first breath...",
}

// bloomMessageFor picks a stable poetic line for a bloomed plant.
func bloomMessageFor(id uuid.UUID) string {
	sum := 0
	for _, b := range id {
		sum += int(b)
	}
	return poeticMessages[sum%len(poeticMessages)]
}

// stageFor maps plant age to a growth stage.
func stageFor(age time.Duration) string {
	switch {
	case age < 24*time.Hour:
		return "seed"
	case age < 3*24*time.Hour:
		return "sprout"
	case age < 7*24*time.Hour:
		return "bud"
	default:
		return "bloom"
	}
}
