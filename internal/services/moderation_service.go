package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/models"
)

var (
	ErrSelfBlock      = errors.New("cannot block yourself")
	ErrAlreadyBlocked = errors.New("user already blocked")
	ErrEmptyReason    = errors.New("report reason is required")
	ErrBlockedContent = errors.New("content contains blocked language")
)

// bannedWords is the shared-space content filter, matched
// case-insensitively on whole words.
var bannedWords = []string{
	"kill yourself", "kys", "slut", "whore", "retard", "faggot",
}

type ModerationService struct {
	db *gorm.DB
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

// CheckContent rejects text containing banned language. Shared realms
// (circles, the origin wall) call this before persisting a post.
func (s *ModerationService) CheckContent(text string) error {
	normalized := " " + strings.ToLower(text) + " "
	for _, ch := range []string{".", ",", "!", "?", ";", ":", "\n", "\t"} {
		normalized = strings.ReplaceAll(normalized, ch, " ")
	}
	for _, w := range bannedWords {
		if strings.Contains(normalized, " "+w+" ") {
			return ErrBlockedContent
		}
	}
	return nil
}

func (s *ModerationService) Report(reporterID uuid.UUID, contentType, contentID, reason string) (*models.Report, error) {
	if reason == "" {
		return nil, ErrEmptyReason
	}
	report := models.Report{
		ReporterID:  reporterID,
		ContentType: contentType,
		ContentID:   contentID,
		Reason:      reason,
		Status:      "pending",
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ModerationService) Block(blockerID, blockedID uuid.UUID) (*models.Block, error) {
	if blockerID == blockedID {
		return nil, ErrSelfBlock
	}
	var existing models.Block
	err := s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyBlocked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	block := models.Block{BlockerID: blockerID, BlockedID: blockedID}
	if err := s.db.Create(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

func (s *ModerationService) Unblock(blockerID, blockedID uuid.UUID) error {
	return s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

// BlockedIDs returns the set of user IDs the given user has blocked,
// for filtering shared feeds.
func (s *ModerationService) BlockedIDs(blockerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.Block{}).
		Where("blocker_id = ?", blockerID).
		Pluck("blocked_id", &ids).Error
	return ids, err
}
