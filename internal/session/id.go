package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// TokenBytes is the size of a session token. 16 bytes = 128 bits of entropy.
const TokenBytes = 16

const digits = "0123456789"

// GenerateToken generates a cryptographically secure session token,
// hex-encoded.
func GenerateToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateCode generates a random numeric connection code of the given
// length. Each digit is drawn unbiased from a cryptographically secure
// source.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("session: invalid code length %d", length)
	}

	result := make([]byte, length)
	digitCount := big.NewInt(int64(len(digits)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, digitCount)
		if err != nil {
			return "", fmt.Errorf("session: failed to generate code: %w", err)
		}
		result[i] = digits[n.Int64()]
	}

	return string(result), nil
}
