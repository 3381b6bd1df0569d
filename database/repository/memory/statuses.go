package memory

import (
	"context"
	"sync"
	"time"

	"visapoint/database/repository"
	"visapoint/models"

	"github.com/google/uuid"
)

var _ repository.StatusRepository = (*Statuses)(nil)

// Statuses is an in-memory StatusRepository.
type Statuses struct {
	mu   sync.RWMutex
	rows []models.StatusEntry
}

func NewStatuses() *Statuses {
	return &Statuses{}
}

func (r *Statuses) Append(_ context.Context, entry *models.StatusEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, *entry)
	return nil
}

func (r *Statuses) ListByApplication(_ context.Context, applicationID string) ([]models.StatusEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.StatusEntry{}
	for _, e := range r.rows {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *Statuses) DeleteByApplication(_ context.Context, applicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, e := range r.rows {
		if e.ApplicationID != applicationID {
			kept = append(kept, e)
		}
	}
	r.rows = kept
	return nil
}
