package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)
	ctx := context.Background()

	referrer := int64(7)
	created, err := accounts.Create(ctx, 100, &referrer)
	require.NoError(t, err)
	require.True(t, created)

	created, err = accounts.Create(ctx, 100, nil)
	require.NoError(t, err)
	require.False(t, created)

	account, err := accounts.Get(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, account.ReferrerID)
	require.Equal(t, int64(7), *account.ReferrerID)
	require.False(t, account.Verified)
	require.Equal(t, int64(0), account.Points)
}

func TestAccountGetUnknown(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)

	_, err := accounts.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrUnknownAccount)
}

func TestCreditAndDebitPoints(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)
	ctx := context.Background()

	_, err := accounts.Create(ctx, 1, nil)
	require.NoError(t, err)

	balance, err := accounts.CreditPoints(ctx, 1, 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), balance)

	balance, err = accounts.DebitPoints(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1), balance)

	_, err = accounts.DebitPoints(ctx, 1, 2)
	require.ErrorIs(t, err, ErrInsufficientPoints)

	_, err = accounts.CreditPoints(ctx, 999, 1)
	require.ErrorIs(t, err, ErrUnknownAccount)

	_, err = accounts.DebitPoints(ctx, 999, 1)
	require.ErrorIs(t, err, ErrUnknownAccount)
}

func TestDebitRejectsNonPositiveDelta(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)
	ctx := context.Background()

	_, err := accounts.Create(ctx, 1, nil)
	require.NoError(t, err)

	_, err = accounts.DebitPoints(ctx, 1, 0)
	require.Error(t, err)

	_, err = accounts.CreditPoints(ctx, 1, -1)
	require.Error(t, err)
}

func TestMarkVerified(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)
	ctx := context.Background()

	_, err := accounts.Create(ctx, 1, nil)
	require.NoError(t, err)

	require.NoError(t, accounts.MarkVerified(ctx, 1, "fp-one"))

	account, err := accounts.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, account.Verified)
	require.NotNil(t, account.DeviceFingerprint)
	require.Equal(t, "fp-one", *account.DeviceFingerprint)

	err = accounts.MarkVerified(ctx, 1, "fp-one")
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestMarkVerifiedRejectsDuplicateDevice(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)
	ctx := context.Background()

	_, err := accounts.Create(ctx, 1, nil)
	require.NoError(t, err)
	_, err = accounts.Create(ctx, 2, nil)
	require.NoError(t, err)

	require.NoError(t, accounts.MarkVerified(ctx, 1, "shared-device"))

	err = accounts.MarkVerified(ctx, 2, "shared-device")
	require.ErrorIs(t, err, ErrDuplicateDevice)

	account, err := accounts.Get(ctx, 2)
	require.NoError(t, err)
	require.False(t, account.Verified)
	require.Nil(t, account.DeviceFingerprint)
}

func TestMarkVerifiedUnknownAccount(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)

	err := accounts.MarkVerified(context.Background(), 404, "fp")
	require.ErrorIs(t, err, ErrUnknownAccount)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)
	ctx := context.Background()

	_, err := accounts.Create(ctx, 1, nil)
	require.NoError(t, err)
	_, err = accounts.CreditPoints(ctx, 1, 5)
	require.NoError(t, err)

	const attempts = 10
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := accounts.DebitPoints(ctx, 1, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrInsufficientPoints)
		}
	}
	require.Equal(t, 5, succeeded)

	account, err := accounts.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), account.Points)
}

func TestReferralCounters(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountStore(db)
	ctx := context.Background()

	_, err := accounts.Create(ctx, 1, nil)
	require.NoError(t, err)
	referrer := int64(1)
	_, err = accounts.Create(ctx, 2, &referrer)
	require.NoError(t, err)
	_, err = accounts.Create(ctx, 3, &referrer)
	require.NoError(t, err)

	require.NoError(t, accounts.IncrementReferralCount(ctx, 1))
	account, err := accounts.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), account.ReferralCount)

	count, err := accounts.CountReferrals(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}
