package services

import (
	"context"
	"errors"
	"log"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
	"github.com/frostvortexog/ZenithWave-Refer/internal/store"
)

// ReferralService credits referrers when their referees complete
// verification and debits them when referees leave the gated channels.
type ReferralService struct {
	accounts *store.AccountStore
	telegram *TelegramService
}

// NewReferralService constructs a ReferralService.
func NewReferralService(accounts *store.AccountStore, telegram *TelegramService) *ReferralService {
	return &ReferralService{accounts: accounts, telegram: telegram}
}

// AttributeIfAny credits the referrer of a freshly verified account.
// The verification flow calls this exactly once per account, right after
// the verified flag is set. An absent or since-unknown referrer is a
// no-op, not an error.
func (s *ReferralService) AttributeIfAny(ctx context.Context, account *models.Account) error {
	if account.ReferrerID == nil {
		return nil
	}
	referrerID := *account.ReferrerID

	if _, err := s.accounts.Get(ctx, referrerID); err != nil {
		if errors.Is(err, store.ErrUnknownAccount) {
			return nil
		}
		return err
	}

	if _, err := s.accounts.CreditPoints(ctx, referrerID, 1); err != nil {
		return err
	}
	if err := s.accounts.IncrementReferralCount(ctx, referrerID); err != nil {
		log.Printf("referral counter increment failed for %d: %v", referrerID, err)
	}

	if s.telegram != nil {
		go func() {
			if err := s.telegram.SendMessage(referrerID, "🎉 New referral joined, +1 point", nil); err != nil {
				log.Printf("[Telegram] referral notification failed: %v", err)
			}
		}()
	}

	return nil
}

// DeductForLeave takes the referral point back when a verified referee
// leaves a required channel. A referrer balance already at zero is left
// untouched.
func (s *ReferralService) DeductForLeave(ctx context.Context, account *models.Account) error {
	if account.ReferrerID == nil || !account.Verified {
		return nil
	}
	referrerID := *account.ReferrerID

	if _, err := s.accounts.DebitPoints(ctx, referrerID, 1); err != nil {
		if errors.Is(err, store.ErrInsufficientPoints) || errors.Is(err, store.ErrUnknownAccount) {
			return nil
		}
		return err
	}

	if s.telegram != nil {
		go func() {
			if err := s.telegram.SendMessage(referrerID, "⚠️ Your referral left the channels, -1 point", nil); err != nil {
				log.Printf("[Telegram] leave notification failed: %v", err)
			}
		}()
	}

	return nil
}
