package twin

import (
	"time"

	"github.com/google/uuid"
)

// Message is one turn of a user's conversation with Truly Twin.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Role      string    `gorm:"not null;size:20" json:"role"`
	Content   string    `gorm:"not null;type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "twin_messages"
}
