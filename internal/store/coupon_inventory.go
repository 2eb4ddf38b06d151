package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
)

const (
	// claimAttempts bounds the candidate-retry loop when concurrent
	// claims race on the same rows.
	claimAttempts = 5
	claimBatch    = 10
)

// CouponInventory is the sole writer of coupon rows. ClaimOne is the only
// path from available to used.
type CouponInventory struct {
	db *gorm.DB
}

// NewCouponInventory constructs a CouponInventory.
func NewCouponInventory(db *gorm.DB) *CouponInventory {
	return &CouponInventory{db: db}
}

// AddCodes inserts codes into the pool, silently skipping ones already
// present, and reports how many were actually added. Blank lines are
// ignored.
func (s *CouponInventory) AddCodes(ctx context.Context, codes []string) (int, error) {
	added := 0
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Coupon{Code: code, Status: models.CouponStatusAvailable})
		if res.Error != nil {
			return added, res.Error
		}
		added += int(res.RowsAffected)
	}
	return added, nil
}

// RemoveAvailable deletes up to count available coupons, oldest first,
// and returns the removed codes. A coupon that got claimed between the
// select and the delete is left alone.
func (s *CouponInventory) RemoveAvailable(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	var candidates []models.Coupon
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.CouponStatusAvailable).
		Order("id asc").
		Limit(count).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		res := s.db.WithContext(ctx).
			Where("id = ? AND status = ?", candidate.ID, models.CouponStatusAvailable).
			Delete(&models.Coupon{})
		if res.Error != nil {
			return removed, res.Error
		}
		if res.RowsAffected == 1 {
			removed = append(removed, candidate.Code)
		}
	}
	return removed, nil
}

// CountAvailable returns the number of claimable coupons.
func (s *CouponInventory) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("status = ?", models.CouponStatusAvailable).
		Count(&count).Error
	return count, err
}

// ClaimOne allocates the oldest available coupon to the account. The
// available-to-used transition is a conditional update, so two racing
// callers never win the same code; losing a candidate row moves on to
// the next one, and when no row can be won the pool is out of stock.
func (s *CouponInventory) ClaimOne(ctx context.Context, accountID int64) (*models.Coupon, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		var candidates []models.Coupon
		if err := s.db.WithContext(ctx).
			Where("status = ?", models.CouponStatusAvailable).
			Order("id asc").
			Limit(claimBatch).
			Find(&candidates).Error; err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, ErrOutOfStock
		}

		for i := range candidates {
			coupon := candidates[i]
			now := time.Now()
			res := s.db.WithContext(ctx).Model(&models.Coupon{}).
				Where("id = ? AND status = ?", coupon.ID, models.CouponStatusAvailable).
				Updates(map[string]any{
					"status":      models.CouponStatusUsed,
					"redeemed_by": accountID,
					"redeemed_at": now,
				})
			if res.Error != nil {
				return nil, res.Error
			}
			if res.RowsAffected == 1 {
				coupon.Status = models.CouponStatusUsed
				coupon.RedeemedBy = &accountID
				coupon.RedeemedAt = &now
				return &coupon, nil
			}
		}
	}
	return nil, ErrOutOfStock
}

// Release returns a claimed coupon to the pool. This is the compensation
// step when the point debit fails after a successful claim, so a coupon
// is never lost silently.
func (s *CouponInventory) Release(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      models.CouponStatusAvailable,
			"redeemed_by": nil,
			"redeemed_at": nil,
		}).Error
}
