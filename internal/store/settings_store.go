package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
)

// SettingsStore reads and writes the single settings row.
type SettingsStore struct {
	db *gorm.DB
}

// NewSettingsStore constructs a SettingsStore.
func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Seed inserts the settings row with the given default threshold when
// none exists yet.
func (s *SettingsStore) Seed(ctx context.Context, defaultThreshold int64) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Settings{ID: models.SettingsID, WithdrawPoints: defaultThreshold}).Error
}

// WithdrawThreshold returns the current point cost of one coupon.
func (s *SettingsStore) WithdrawThreshold(ctx context.Context) (int64, error) {
	var settings models.Settings
	if err := s.db.WithContext(ctx).First(&settings, "id = ?", models.SettingsID).Error; err != nil {
		return 0, err
	}
	return settings.WithdrawPoints, nil
}

// SetWithdrawThreshold updates the point cost of one coupon.
func (s *SettingsStore) SetWithdrawThreshold(ctx context.Context, threshold int64) error {
	if threshold <= 0 {
		return fmt.Errorf("withdraw threshold must be positive, got %d", threshold)
	}
	return s.db.WithContext(ctx).Model(&models.Settings{}).
		Where("id = ?", models.SettingsID).
		Update("withdraw_points", threshold).Error
}
