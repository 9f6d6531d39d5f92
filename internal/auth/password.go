package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost of 10 keeps logins around 100ms on small nodes
const bcryptCost = 10

var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword bcrypt-hashes a non-empty password. Inputs over 72 bytes are
// rejected by bcrypt itself.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash. An empty
// hash never matches, so accounts seeded without a password cannot log in.
func VerifyPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
