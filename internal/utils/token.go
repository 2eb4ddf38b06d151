package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateOpaqueToken returns a URL-safe single-use token with 128 bits
// of entropy.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
