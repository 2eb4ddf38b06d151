package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettingsSeedAndThreshold(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsStore(db)
	ctx := context.Background()

	require.NoError(t, settings.Seed(ctx, 3))

	threshold, err := settings.WithdrawThreshold(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), threshold)

	// Seeding again must not clobber the stored value.
	require.NoError(t, settings.Seed(ctx, 99))
	threshold, err = settings.WithdrawThreshold(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), threshold)
}

func TestSetWithdrawThreshold(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsStore(db)
	ctx := context.Background()

	require.NoError(t, settings.Seed(ctx, 3))
	require.NoError(t, settings.SetWithdrawThreshold(ctx, 5))

	threshold, err := settings.WithdrawThreshold(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), threshold)

	require.Error(t, settings.SetWithdrawThreshold(ctx, 0))
	require.Error(t, settings.SetWithdrawThreshold(ctx, -2))
}
