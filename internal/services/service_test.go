package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
	"github.com/frostvortexog/ZenithWave-Refer/internal/store"
)

type testEnv struct {
	db           *gorm.DB
	accounts     *store.AccountStore
	tokens       *store.TokenStore
	coupons      *store.CouponInventory
	logs         *store.RedemptionLogStore
	settings     *store.SettingsStore
	registration *RegistrationService
	referrals    *ReferralService
	verification *VerificationService
	redemption   *RedemptionService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))

	env := &testEnv{
		db:       db,
		accounts: store.NewAccountStore(db),
		tokens:   store.NewTokenStore(db),
		coupons:  store.NewCouponInventory(db),
		logs:     store.NewRedemptionLogStore(db),
		settings: store.NewSettingsStore(db),
	}
	env.registration = NewRegistrationService(env.accounts)
	env.referrals = NewReferralService(env.accounts, nil)
	env.verification = NewVerificationService(env.accounts, env.tokens, env.referrals)
	env.redemption = NewRedemptionService(env.accounts, env.coupons, env.logs, env.settings, nil)
	return env
}
