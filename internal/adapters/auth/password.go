package auth

import (
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"clubevents/internal/domain"
)

// DefaultBcryptCost is used by HashPassword when no cost is given.
const DefaultBcryptCost = 12

type bcryptVerifier struct {
	hash []byte
}

// NewBcryptVerifier returns a CredentialVerifier for the single admin password hash.
// It refuses an empty or malformed hash so the server cannot start accepting any password.
func NewBcryptVerifier(hash string) (domain.CredentialVerifier, error) {
	if hash == "" {
		return nil, errors.New("admin password hash is not configured")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}
	return &bcryptVerifier{hash: []byte(hash)}, nil
}

func (v *bcryptVerifier) Verify(password string) error {
	if password == "" {
		return domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(password)); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns the base64-encoded bcrypt hash of password, ready for ADMIN_PASSWORD_HASH.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(hash), nil
}
