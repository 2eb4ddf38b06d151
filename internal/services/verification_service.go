package services

import (
	"context"

	"github.com/frostvortexog/ZenithWave-Refer/internal/store"
)

// VerificationService owns the transition from gate-approved to
// verified.
type VerificationService struct {
	accounts  *store.AccountStore
	tokens    *store.TokenStore
	referrals *ReferralService
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(accounts *store.AccountStore, tokens *store.TokenStore, referrals *ReferralService) *VerificationService {
	return &VerificationService{accounts: accounts, tokens: tokens, referrals: referrals}
}

// IssueToken hands out a fresh verification token once the account has
// passed the channel-membership gate.
func (s *VerificationService) IssueToken(ctx context.Context, accountID int64) (string, error) {
	return s.tokens.Issue(ctx, accountID)
}

// Verify consumes a single-use token and flips its account to verified.
// Referral crediting runs only after MarkVerified succeeds; combined
// with single-use tokens this makes the credit exactly-once. A failed
// device-fingerprint check leaves the account unverified and credits
// nothing.
func (s *VerificationService) Verify(ctx context.Context, token, fingerprint string) error {
	accountID, err := s.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Verified {
		return store.ErrAlreadyVerified
	}

	if err := s.accounts.MarkVerified(ctx, accountID, fingerprint); err != nil {
		return err
	}

	return s.referrals.AttributeIfAny(ctx, account)
}
