package dto

import "github.com/google/uuid"

type ReportRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Reason      string `json:"reason"`
}

type BlockRequest struct {
	BlockedUserID uuid.UUID `json:"blocked_user_id"`
}

type ReportResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"created_at"`
}
