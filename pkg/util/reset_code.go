package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	resetCodeMin  = 100000
	resetCodeSpan = 900000
)

// GenerateResetCode returns a uniformly random six digit code in
// [100000, 999999].
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(resetCodeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%d", resetCodeMin+n.Int64()), nil
}

// HashResetCode is the one-way digest stored in place of a reset code.
func HashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
