package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
)

const sessionTTL = 10 * time.Minute

// SessionStore keeps short-lived "awaiting input" records for admin
// chats. Storing them instead of holding a process-global map means the
// state survives restarts and is shared across instances.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Set records the input state the admin's next message should satisfy.
func (s *SessionStore) Set(ctx context.Context, adminID int64, state string) error {
	session := models.AdminSession{
		AdminID:   adminID,
		State:     state,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "admin_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "expires_at", "updated_at"}),
		}).
		Create(&session).Error
}

// Get returns the pending input state, if any. Expired sessions count as
// absent and are cleaned up on the way out.
func (s *SessionStore) Get(ctx context.Context, adminID int64) (string, bool, error) {
	var session models.AdminSession
	err := s.db.WithContext(ctx).First(&session, "admin_id = ?", adminID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.Clear(ctx, adminID)
		return "", false, nil
	}
	return session.State, true, nil
}

// Clear removes the pending input state.
func (s *SessionStore) Clear(ctx context.Context, adminID int64) error {
	return s.db.WithContext(ctx).
		Delete(&models.AdminSession{}, "admin_id = ?", adminID).Error
}
