package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
)

// AccountStore is the sole writer of account rows. Every balance and
// verification mutation is a single conditional update, so concurrent
// requests for the same account cannot lose writes.
type AccountStore struct {
	db *gorm.DB
}

// NewAccountStore constructs an AccountStore.
func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

// Get returns the account or ErrUnknownAccount.
func (s *AccountStore) Get(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, err
	}
	return &account, nil
}

// Create inserts a new account and reports whether a row was actually
// created. An id that already exists is a no-op, which makes repeated
// registrations idempotent.
func (s *AccountStore) Create(ctx context.Context, id int64, referrerID *int64) (bool, error) {
	account := models.Account{ID: id, ReferrerID: referrerID}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&account)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreditPoints atomically adds delta to the balance and returns the new
// balance.
func (s *AccountStore) CreditPoints(ctx context.Context, id int64, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("credit delta must be positive, got %d", delta)
	}

	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrUnknownAccount
	}

	return s.balance(ctx, id)
}

// DebitPoints atomically subtracts delta, but only when the current
// balance covers it. The balance can never go negative.
func (s *AccountStore) DebitPoints(ctx context.Context, id int64, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("debit delta must be positive, got %d", delta)
	}

	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND points >= ?", id, delta).
		Update("points", gorm.Expr("points - ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return 0, err
		}
		return 0, ErrInsufficientPoints
	}

	return s.balance(ctx, id)
}

// MarkVerified flips the account to verified and binds the device
// fingerprint. The unique index on device_fingerprint is the final
// arbiter when two accounts race on the same device.
func (s *AccountStore) MarkVerified(ctx context.Context, id int64, fingerprint string) error {
	var bound int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("device_fingerprint = ? AND id <> ?", fingerprint, id).
		Count(&bound).Error; err != nil {
		return err
	}
	if bound > 0 {
		return ErrDuplicateDevice
	}

	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND verified = ?", id, false).
		Updates(map[string]any{
			"verified":           true,
			"device_fingerprint": fingerprint,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateDevice
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyVerified
	}

	return nil
}

// IncrementReferralCount bumps the referrer's counter of completed
// referrals.
func (s *AccountStore) IncrementReferralCount(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("referral_count", gorm.Expr("referral_count + 1")).Error
}

// CountReferrals counts accounts that registered through this account's
// referral link.
func (s *AccountStore) CountReferrals(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("referrer_id = ?", id).
		Count(&count).Error
	return count, err
}

func (s *AccountStore) balance(ctx context.Context, id int64) (int64, error) {
	var points int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Select("points").
		Scan(&points).Error; err != nil {
		return 0, err
	}
	return points, nil
}
