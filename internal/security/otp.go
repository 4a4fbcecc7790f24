package security

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// OTPDigits is the length of a one-time code
const OTPDigits = 6

// GenerateOTP returns a random zero-padded numeric code
func GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OTPDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", OTPDigits, n), nil
}

// HashOTP hashes a code for storage. Codes are never stored in plaintext,
// a leaked store snapshot must not be replayable.
func HashOTP(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	return string(hash), nil
}

// VerifyOTP compares a submitted code against a stored hash
func VerifyOTP(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
