package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken returns a 64-character hex token from 32 random bytes,
// used for email verification links.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
