// Package session issues and parses bearer tokens and tracks revoked ones.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visapoint/models"
	"visapoint/utils"
)

var ErrRevoked = errors.New("session has been revoked")

// Session is the authenticated caller attached to a request.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == models.RoleAdmin }

// Denylist remembers revoked token hashes until the token would expire anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Manager signs tokens with the configured secret.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	denylist Denylist
}

func NewManager(secret string, ttl time.Duration, denylist Denylist) *Manager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, denylist: denylist}
}

// Issue creates a token for the user.
func (m *Manager) Issue(subject, email, role string) (string, *Session, error) {
	token, err := utils.GenerateToken(m.secret, subject, email, role, m.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, &Session{
		UserID:    subject,
		Email:     email,
		Role:      role,
		TokenHash: utils.HashToken(token),
		ExpiresAt: time.Now().Add(m.ttl),
	}, nil
}

// IssueForUser is Issue for an applicant account.
func (m *Manager) IssueForUser(u *models.User) (string, *Session, error) {
	role := u.Role
	if role == "" {
		role = models.RoleClient
	}
	return m.Issue(u.ID, u.Email, role)
}

// Parse validates the token and checks it has not been revoked.
func (m *Manager) Parse(ctx context.Context, token string) (*Session, error) {
	claims, err := utils.ValidateToken(m.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidToken, err)
	}
	hash := utils.HashToken(token)
	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to check token: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return &Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		TokenHash: hash,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Revoke denylists the session's token for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, s *Session) error {
	if s == nil || m.denylist == nil {
		return nil
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.denylist.Revoke(ctx, s.TokenHash, ttl)
}
