package services

import (
	"context"

	"github.com/frostvortexog/ZenithWave-Refer/internal/store"
)

// RegistrationService creates accounts on first contact.
type RegistrationService struct {
	accounts *store.AccountStore
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(accounts *store.AccountStore) *RegistrationService {
	return &RegistrationService{accounts: accounts}
}

// Register creates the account if it does not exist yet. A referral
// pointing at the account itself is dropped rather than failing the
// registration, and repeat calls with the same id change nothing.
func (s *RegistrationService) Register(ctx context.Context, id int64, referrerID *int64) error {
	if referrerID != nil && *referrerID == id {
		referrerID = nil
	}
	_, err := s.accounts.Create(ctx, id, referrerID)
	return err
}
