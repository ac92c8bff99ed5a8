package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a cryptographically random string of exactly `digits`
// decimal digits whose first digit is never zero.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("digits must be positive")
	}
	out := make([]byte, digits)
	for i := range out {
		lo, span := int64(0), int64(10)
		if i == 0 {
			lo, span = 1, 9
		}
		n, err := rand.Int(rand.Reader, big.NewInt(span))
		if err != nil {
			return "", fmt.Errorf("failed to read random digit: %w", err)
		}
		out[i] = byte('0' + lo + n.Int64())
	}
	return string(out), nil
}
