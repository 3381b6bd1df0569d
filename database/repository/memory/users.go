package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"visapoint/database"
	"visapoint/database/repository"
	"visapoint/models"

	"github.com/google/uuid"
)

var _ repository.UserRepository = (*Users)(nil)

// Users is an in-memory UserRepository.
type Users struct {
	mu   sync.RWMutex
	rows map[string]models.User
}

func NewUsers() *Users {
	return &Users{rows: make(map[string]models.User)}
}

func (r *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, database.ErrNotFound)
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.rows {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, database.ErrNotFound)
}

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.rows {
		if u.Email == user.Email || u.ID == user.ID {
			return fmt.Errorf("failed to create user: %w", database.ErrDuplicate)
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.rows[user.ID] = *user
	return nil
}

func (r *Users) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, database.ErrNotFound)
	}
	user.UpdatedAt = time.Now()
	r.rows[user.ID] = *user
	return nil
}
