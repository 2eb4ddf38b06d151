package models

import (
	"time"
)

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

// Settings holds mutable runtime knobs. Exactly one row exists.
type Settings struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WithdrawPoints int64     `json:"withdraw_points"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Admin input states driven by the admin panel keyboard.
const (
	AdminStateAddCoupons    = "add_coupons"
	AdminStateRemoveCoupons = "remove_coupons"
	AdminStateSetThreshold  = "set_threshold"
)

// AdminSession records what free-form input an admin chat is expected to
// send next (coupon lines, removal count, new threshold). Rows expire
// instead of living in process memory, so any instance serving the
// webhook sees them.
type AdminSession struct {
	AdminID   int64     `gorm:"primaryKey;autoIncrement:false" json:"admin_id"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
