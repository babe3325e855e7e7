package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of decimal digits in a generated code.
const Length = 6

var ceiling = big.NewInt(1_000_000) // 10^Length

// Generate returns a fixed-length numeric code drawn from crypto/rand.
// Each call is independent of prior state; guessing probability per attempt
// is 10^-6. An error means the entropy source is exhausted and the request
// must be aborted.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, ceiling)
	if err != nil {
		return "", fmt.Errorf("generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
