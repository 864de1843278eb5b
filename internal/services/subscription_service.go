package services

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/models"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) IsPremium(userID uuid.UUID) bool {
	var sub models.Subscription
	if err := s.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return false
	}
	return sub.IsActive()
}

func (s *SubscriptionService) Get(userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, ErrSubscriptionNotFound
	}
	return &sub, nil
}

// ApplyWebhook upserts the subscription row from a RevenueCat event.
// Unknown event types are logged and skipped.
func (s *SubscriptionService) ApplyWebhook(event *dto.RevenueCatEvent) error {
	userID, err := uuid.Parse(event.Event.AppUserID)
	if err != nil {
		return errors.New("app_user_id is not a valid user id")
	}

	status := statusForEvent(event.Event.Type)
	if status == "" {
		slog.Info("ignoring subscription event", "type", event.Event.Type)
		return nil
	}

	sub := models.Subscription{
		UserID:       userID,
		RevenueCatID: event.Event.OriginalTransactionID,
		ProductID:    event.Event.ProductID,
		Status:       status,
	}
	if event.Event.PurchasedAtMs > 0 {
		sub.CurrentPeriodStart = time.UnixMilli(event.Event.PurchasedAtMs)
	}
	if event.Event.ExpirationAtMs > 0 {
		sub.CurrentPeriodEnd = time.UnixMilli(event.Event.ExpirationAtMs)
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"revenue_cat_id", "product_id", "status",
			"current_period_start", "current_period_end", "updated_at",
		}),
	}).Create(&sub).Error
}

func statusForEvent(eventType string) string {
	switch eventType {
	case "INITIAL_PURCHASE", "RENEWAL", "UNCANCELLATION", "PRODUCT_CHANGE":
		return "active"
	case "CANCELLATION":
		return "cancelled"
	case "EXPIRATION":
		return "expired"
	case "BILLING_ISSUE":
		return "billing_issue"
	default:
		return ""
	}
}
