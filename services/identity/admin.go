package identity

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials is the single staff account, configured by email and
// bcrypt hash.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// Verify returns ErrInvalidCredentials unless both fields match.
func (a AdminCredentials) Verify(email, password string) error {
	if a.Email == "" || a.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(email), a.Email) {
		// Compare anyway to keep timing uniform.
		_ = bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
