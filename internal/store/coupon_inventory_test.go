package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddCodesSkipsDuplicatesAndBlanks(t *testing.T) {
	db := setupTestDB(t)
	coupons := NewCouponInventory(db)
	ctx := context.Background()

	added, err := coupons.AddCodes(ctx, []string{"AAA", "BBB", "", "  ", "AAA"})
	require.NoError(t, err)
	require.Equal(t, 2, added)

	added, err = coupons.AddCodes(ctx, []string{"BBB", "CCC"})
	require.NoError(t, err)
	require.Equal(t, 1, added)

	count, err := coupons.CountAvailable(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestRemoveAvailableOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	coupons := NewCouponInventory(db)
	ctx := context.Background()

	_, err := coupons.AddCodes(ctx, []string{"OLD1", "OLD2", "NEW1"})
	require.NoError(t, err)

	removed, err := coupons.RemoveAvailable(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"OLD1", "OLD2"}, removed)

	count, err := coupons.CountAvailable(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	removed, err = coupons.RemoveAvailable(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, []string{"NEW1"}, removed)
}

func TestRemoveAvailableSkipsClaimed(t *testing.T) {
	db := setupTestDB(t)
	coupons := NewCouponInventory(db)
	ctx := context.Background()

	_, err := coupons.AddCodes(ctx, []string{"KEEP"})
	require.NoError(t, err)

	claimed, err := coupons.ClaimOne(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "KEEP", claimed.Code)

	removed, err := coupons.RemoveAvailable(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, removed)
}

func TestClaimOneOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	coupons := NewCouponInventory(db)
	ctx := context.Background()

	_, err := coupons.AddCodes(ctx, []string{"FIRST", "SECOND"})
	require.NoError(t, err)

	coupon, err := coupons.ClaimOne(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "FIRST", coupon.Code)
	require.NotNil(t, coupon.RedeemedBy)
	require.Equal(t, int64(42), *coupon.RedeemedBy)
	require.NotNil(t, coupon.RedeemedAt)

	coupon, err = coupons.ClaimOne(ctx, 43)
	require.NoError(t, err)
	require.Equal(t, "SECOND", coupon.Code)

	_, err = coupons.ClaimOne(ctx, 44)
	require.ErrorIs(t, err, ErrOutOfStock)
}

func TestConcurrentClaimsWinDistinctCodes(t *testing.T) {
	db := setupTestDB(t)
	coupons := NewCouponInventory(db)
	ctx := context.Background()

	_, err := coupons.AddCodes(ctx, []string{"C1", "C2", "C3"})
	require.NoError(t, err)

	const claimers = 8
	type outcome struct {
		code string
		err  error
	}
	results := make(chan outcome, claimers)
	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			coupon, err := coupons.ClaimOne(ctx, id)
			if err != nil {
				results <- outcome{err: err}
				return
			}
			results <- outcome{code: coupon.Code}
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	won := map[string]bool{}
	outOfStock := 0
	for res := range results {
		if res.err != nil {
			require.ErrorIs(t, res.err, ErrOutOfStock)
			outOfStock++
			continue
		}
		require.False(t, won[res.code], "code %s claimed twice", res.code)
		won[res.code] = true
	}
	require.Len(t, won, 3)
	require.Equal(t, claimers-3, outOfStock)
}

func TestReleaseReturnsCouponToPool(t *testing.T) {
	db := setupTestDB(t)
	coupons := NewCouponInventory(db)
	ctx := context.Background()

	_, err := coupons.AddCodes(ctx, []string{"ONLY"})
	require.NoError(t, err)

	claimed, err := coupons.ClaimOne(ctx, 1)
	require.NoError(t, err)

	count, err := coupons.CountAvailable(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	require.NoError(t, coupons.Release(ctx, claimed.ID))

	reclaimed, err := coupons.ClaimOne(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "ONLY", reclaimed.Code)
	require.Equal(t, int64(2), *reclaimed.RedeemedBy)
}
