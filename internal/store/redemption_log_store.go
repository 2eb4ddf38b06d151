package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
)

// RedemptionLogStore appends to and reads the redemption audit trail.
// The log is append-only; nothing updates or deletes entries.
type RedemptionLogStore struct {
	db *gorm.DB
}

// NewRedemptionLogStore constructs a RedemptionLogStore.
func NewRedemptionLogStore(db *gorm.DB) *RedemptionLogStore {
	return &RedemptionLogStore{db: db}
}

// Append records a completed redemption.
func (s *RedemptionLogStore) Append(ctx context.Context, accountID int64, code string) error {
	return s.db.WithContext(ctx).
		Create(&models.RedemptionLog{AccountID: accountID, CouponCode: code}).Error
}

// Recent returns the newest entries, newest first.
func (s *RedemptionLogStore) Recent(ctx context.Context, limit int) ([]models.RedemptionLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []models.RedemptionLog
	err := s.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// List returns a page of entries, newest first, plus the total count.
func (s *RedemptionLogStore) List(ctx context.Context, limit, offset int) ([]models.RedemptionLog, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.RedemptionLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.RedemptionLog
	if err := s.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
