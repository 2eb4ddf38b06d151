package models

import (
	"time"
)

// Account is a participant's durable record: point balance, verification
// state and referral edge. Accounts are keyed by the Telegram user id and
// are never deleted. The verified flag only ever moves false to true, and
// the device fingerprint is bound once, at verification time.
type Account struct {
	ID                int64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Points            int64      `json:"points"`
	Verified          bool       `json:"verified"`
	ReferrerID        *int64     `gorm:"index" json:"referrer_id,omitempty"`
	DeviceFingerprint *string    `gorm:"uniqueIndex" json:"-"`
	ReferralCount     int64      `json:"referral_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// VerificationToken binds a pending registration to the one-time web
// verification step. A token flips to used at most once and is never
// deleted; issuing a new token does not invalidate earlier ones.
type VerificationToken struct {
	BaseModel
	AccountID int64      `gorm:"index" json:"account_id"`
	Token     string     `gorm:"uniqueIndex" json:"token"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}
