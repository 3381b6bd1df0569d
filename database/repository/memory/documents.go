package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"visapoint/database"
	"visapoint/database/repository"
	"visapoint/models"

	"github.com/google/uuid"
)

var _ repository.DocumentRepository = (*Documents)(nil)

// Documents is an in-memory DocumentRepository.
type Documents struct {
	mu   sync.RWMutex
	rows map[string]models.ClientDocument
}

func NewDocuments() *Documents {
	return &Documents{rows: make(map[string]models.ClientDocument)}
}

func (r *Documents) Create(_ context.Context, doc *models.ClientDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = time.Now()
	r.rows[doc.ID] = *doc
	return nil
}

func (r *Documents) GetByID(_ context.Context, id string) (*models.ClientDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, database.ErrNotFound)
	}
	return &d, nil
}

func (r *Documents) filter(keep func(models.ClientDocument) bool) []models.ClientDocument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.ClientDocument{}
	for _, d := range r.rows {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func (r *Documents) ListByUser(_ context.Context, userID string) ([]models.ClientDocument, error) {
	return r.filter(func(d models.ClientDocument) bool { return d.UserID == userID }), nil
}

func (r *Documents) ListByApplication(_ context.Context, applicationID string) ([]models.ClientDocument, error) {
	return r.filter(func(d models.ClientDocument) bool { return d.ApplicationID == applicationID }), nil
}

func (r *Documents) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("document %s: %w", id, database.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}
