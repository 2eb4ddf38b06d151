package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
)

func TestSessionSetGetClear(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionStore(db)
	ctx := context.Background()

	state, ok, err := sessions.Get(ctx, 10)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, state)

	require.NoError(t, sessions.Set(ctx, 10, models.AdminStateAddCoupons))
	state, ok, err = sessions.Get(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models.AdminStateAddCoupons, state)

	// A second Set overwrites the pending state.
	require.NoError(t, sessions.Set(ctx, 10, models.AdminStateSetThreshold))
	state, ok, err = sessions.Get(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models.AdminStateSetThreshold, state)

	require.NoError(t, sessions.Clear(ctx, 10))
	_, ok, err = sessions.Get(ctx, 10)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionExpiryCountsAsAbsent(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionStore(db)
	ctx := context.Background()

	require.NoError(t, sessions.Set(ctx, 11, models.AdminStateRemoveCoupons))

	expired := models.AdminSession{
		AdminID:   11,
		State:     models.AdminStateRemoveCoupons,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Save(&expired).Error)

	_, ok, err := sessions.Get(ctx, 11)
	require.NoError(t, err)
	require.False(t, ok)
}
