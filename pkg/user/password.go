package user

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher abstracts how stored passwords are produced and checked.
type PasswordHasher interface {
	// Hash produces the stored form of a password
	Hash(plain string) (string, error)

	// Verify reports whether plain matches the stored form
	Verify(stored, plain string) bool
}

// PlaintextHasher stores passwords as-is and compares them literally.
// This is the demo default; do not use it outside a demo.
type PlaintextHasher struct{}

func (PlaintextHasher) Hash(plain string) (string, error) {
	return plain, nil
}

func (PlaintextHasher) Verify(stored, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

// BcryptHasher stores passwords as bcrypt hashes
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h BcryptHasher) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// NewPasswordHasher creates a password hasher for the configured scheme
func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case "", "plaintext":
		return PlaintextHasher{}, nil
	case "bcrypt":
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unsupported password scheme: %s (supported: plaintext, bcrypt)", scheme)
	}
}
