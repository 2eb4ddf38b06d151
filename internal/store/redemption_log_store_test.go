package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedemptionLogAppendAndRecent(t *testing.T) {
	db := setupTestDB(t)
	logs := NewRedemptionLogStore(db)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		require.NoError(t, logs.Append(ctx, int64(i), fmt.Sprintf("CODE-%02d", i)))
	}

	entries, err := logs.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	require.Equal(t, "CODE-12", entries[0].CouponCode)
	require.Equal(t, "CODE-03", entries[9].CouponCode)

	entries, err = logs.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestRedemptionLogList(t *testing.T) {
	db := setupTestDB(t)
	logs := NewRedemptionLogStore(db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, logs.Append(ctx, int64(i), fmt.Sprintf("CODE-%d", i)))
	}

	entries, total, err := logs.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, entries, 2)
	require.Equal(t, "CODE-5", entries[0].CouponCode)

	entries, total, err = logs.List(ctx, 2, 4)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, entries, 1)
	require.Equal(t, "CODE-1", entries[0].CouponCode)
}
