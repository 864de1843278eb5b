package circles

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Membership records which circles a user has joined and the anonymous
// name they speak through there.
type Membership struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_circle_member,unique" json:"user_id"`
	CircleID      string    `gorm:"not null;size:50;index:idx_circle_member,unique" json:"circle_id"`
	AnonymousName string    `gorm:"not null;size:50" json:"anonymous_name"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Membership) TableName() string {
	return "circle_memberships"
}

// Message is one anonymous post. Reactions holds emoji counts as JSONB.
type Message struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CircleID    string         `gorm:"not null;size:50;index" json:"circle_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	DisplayName string         `gorm:"not null;size:50" json:"display_name"`
	Content     string         `gorm:"not null;size:1000" json:"content"`
	Reactions   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"reactions"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (Message) TableName() string {
	return "circle_messages"
}

// Reply is a threaded response under a message.
type Reply struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MessageID   uuid.UUID `gorm:"type:uuid;not null;index" json:"message_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null" json:"-"`
	DisplayName string    `gorm:"not null;size:50" json:"display_name"`
	Content     string    `gorm:"not null;size:1000" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Reply) TableName() string {
	return "circle_replies"
}
