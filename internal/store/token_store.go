package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
	"github.com/frostvortexog/ZenithWave-Refer/internal/utils"
)

// TokenStore is the sole writer of verification tokens.
type TokenStore struct {
	db *gorm.DB
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Issue creates a fresh single-use token for the account. Earlier
// outstanding tokens stay valid; the verification flow tolerates
// duplicates.
func (s *TokenStore) Issue(ctx context.Context, accountID int64) (string, error) {
	token, err := utils.GenerateOpaqueToken()
	if err != nil {
		return "", err
	}

	record := models.VerificationToken{AccountID: accountID, Token: token}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", err
	}
	return token, nil
}

// Consume marks the token used and returns its account id. The used flag
// flips through a conditional update: exactly one of any number of
// concurrent callers wins, the rest get ErrTokenAlreadyUsed.
func (s *TokenStore) Consume(ctx context.Context, token string) (int64, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.VerificationToken{}).
		Where("token = ? AND used = ?", token, false).
		Updates(map[string]any{
			"used":    true,
			"used_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var existing models.VerificationToken
		err := s.db.WithContext(ctx).First(&existing, "token = ?", token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidToken
		}
		if err != nil {
			return 0, err
		}
		return 0, ErrTokenAlreadyUsed
	}

	var record models.VerificationToken
	if err := s.db.WithContext(ctx).First(&record, "token = ?", token).Error; err != nil {
		return 0, err
	}
	return record.AccountID, nil
}
