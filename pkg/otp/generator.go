package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength is the number of digits in a generated code.
const CodeLength = 6

var ten = big.NewInt(10)

// Generate returns a six-digit numeric code. Each digit is drawn
// independently and uniformly from crypto/rand; repeated digits are
// allowed.
func Generate() (string, error) {
	buf := make([]byte, 0, CodeLength)
	for range CodeLength {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate otp digit: %w", err)
		}
		buf = append(buf, byte('0'+n.Int64()))
	}
	return string(buf), nil
}
