package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// cardBIN prefixes every issued card number.
const cardBIN = "4400"

// GenerateCardNumber issues a random 16-digit card number under the bank's
// BIN. Uniqueness is enforced by the accounts table, not here.
func GenerateCardNumber() (string, error) {
	digits := make([]byte, 0, 16)
	digits = append(digits, cardBIN...)
	for len(digits) < 16 {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits = append(digits, byte('0'+n.Int64()))
	}
	return string(digits), nil
}
