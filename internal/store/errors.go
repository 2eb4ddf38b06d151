package store

import "errors"

// Precondition failures surfaced to callers as typed results. Each is
// checked before any write; none leaves partial state behind.
var (
	ErrUnknownAccount     = errors.New("account not found")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrOutOfStock         = errors.New("coupons out of stock")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrDuplicateDevice    = errors.New("device fingerprint already bound")
	ErrInvalidToken       = errors.New("unknown verification token")
	ErrTokenAlreadyUsed   = errors.New("verification token already used")
)
