package models

import (
	"time"
)

// Coupon status values.
const (
	CouponStatusAvailable = "available"
	CouponStatusUsed      = "used"
)

// Coupon is a single-use reward code held in inventory. The integer
// primary key gives the "oldest first" order for claims and removals.
type Coupon struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Code       string     `gorm:"uniqueIndex" json:"code"`
	Status     string     `gorm:"index;default:available" json:"status"`
	RedeemedBy *int64     `json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RedemptionLog is the append-only audit trail of completed redemptions.
type RedemptionLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AccountID  int64     `gorm:"index" json:"account_id"`
	CouponCode string    `json:"coupon_code"`
	CreatedAt  time.Time `json:"created_at"`
}
