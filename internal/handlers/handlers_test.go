package handlers

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frostvortexog/ZenithWave-Refer/internal/config"
	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		AppPort:               "8080",
		JWTSecret:             "test-secret",
		TokenExpires:          time.Hour,
		BotUsername:           "test_bot",
		PublicBaseURL:         "https://example.com",
		AdminIDs:              []int64{900},
		AdminPassword:         "hunter2",
		RequiredChannels:      []string{"@channel_one"},
		WithdrawPointsDefault: 3,
	}
}
