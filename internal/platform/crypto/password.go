package crypto

import (
	"fmt"

	"estate_backend/internal/common"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor.
const PasswordCost = 10

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by HashPassword for inputs bcrypt cannot hash.
var ErrPasswordTooLong = common.ErrBadRequest.WithMessage(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
