package services

import (
	"context"
	"fmt"
	"log"

	"github.com/frostvortexog/ZenithWave-Refer/internal/store"
)

// RedemptionService converts points into a coupon code.
type RedemptionService struct {
	accounts *store.AccountStore
	coupons  *store.CouponInventory
	logs     *store.RedemptionLogStore
	settings *store.SettingsStore
	telegram *TelegramService
}

// NewRedemptionService constructs a RedemptionService.
func NewRedemptionService(
	accounts *store.AccountStore,
	coupons *store.CouponInventory,
	logs *store.RedemptionLogStore,
	settings *store.SettingsStore,
	telegram *TelegramService,
) *RedemptionService {
	return &RedemptionService{
		accounts: accounts,
		coupons:  coupons,
		logs:     logs,
		settings: settings,
		telegram: telegram,
	}
}

// Redeem exchanges the withdraw threshold worth of points for one coupon
// code. The coupon is claimed before the debit, so a stock-out never
// costs the user points; a debit that loses its race releases the
// claimed coupon back to the pool.
func (s *RedemptionService) Redeem(ctx context.Context, accountID int64) (string, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return "", err
	}

	threshold, err := s.settings.WithdrawThreshold(ctx)
	if err != nil {
		return "", err
	}
	if account.Points < threshold {
		return "", store.ErrInsufficientPoints
	}

	coupon, err := s.coupons.ClaimOne(ctx, accountID)
	if err != nil {
		return "", err
	}

	if _, err := s.accounts.DebitPoints(ctx, accountID, threshold); err != nil {
		if releaseErr := s.coupons.Release(ctx, coupon.ID); releaseErr != nil {
			log.Printf("coupon %s release failed after debit failure: %v", coupon.Code, releaseErr)
		}
		return "", err
	}

	if err := s.logs.Append(ctx, accountID, coupon.Code); err != nil {
		// Coupon already delivered and paid for; the audit row is
		// best-effort.
		log.Printf("redemption log append failed for account %d: %v", accountID, err)
	}

	if s.telegram != nil {
		code := coupon.Code
		go s.telegram.SendToAdmins(fmt.Sprintf("User %d redeemed <b>%s</b>", accountID, code))
	}

	return coupon.Code, nil
}
