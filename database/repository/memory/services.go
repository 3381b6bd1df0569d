package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"visapoint/database"
	"visapoint/database/repository"
	"visapoint/models"

	"github.com/google/uuid"
)

var _ repository.ServiceRepository = (*Services)(nil)

// Services is an in-memory ServiceRepository.
type Services struct {
	mu   sync.RWMutex
	rows map[string]models.VisaService
}

func NewServices() *Services {
	return &Services{rows: make(map[string]models.VisaService)}
}

func (r *Services) slugTaken(slug, exceptID string) bool {
	for _, s := range r.rows {
		if s.Slug == slug && s.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *Services) Create(_ context.Context, svc *models.VisaService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	if _, ok := r.rows[svc.ID]; ok || r.slugTaken(svc.Slug, svc.ID) {
		return fmt.Errorf("failed to create service %q: %w", svc.Slug, database.ErrDuplicate)
	}
	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	r.rows[svc.ID] = *svc
	return nil
}

func (r *Services) Update(_ context.Context, svc *models.VisaService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[svc.ID]; !ok {
		return fmt.Errorf("service %s: %w", svc.ID, database.ErrNotFound)
	}
	if r.slugTaken(svc.Slug, svc.ID) {
		return fmt.Errorf("failed to update service %s: %w", svc.ID, database.ErrDuplicate)
	}
	svc.UpdatedAt = time.Now()
	r.rows[svc.ID] = *svc
	return nil
}

func (r *Services) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}

func (r *Services) GetByID(_ context.Context, id string) (*models.VisaService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	return &s, nil
}

func (r *Services) GetBySlug(_ context.Context, slug string) (*models.VisaService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.rows {
		if s.Slug == slug {
			out := s
			return &out, nil
		}
	}
	return nil, fmt.Errorf("service %q: %w", slug, database.ErrNotFound)
}

func (r *Services) List(_ context.Context, activeOnly bool) ([]models.VisaService, error) {
	r.mu.RLock()
	out := []models.VisaService{}
	for _, s := range r.rows {
		if !activeOnly || s.Active {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (r *Services) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	s.Active = active
	s.UpdatedAt = time.Now()
	r.rows[id] = s
	return nil
}

func (r *Services) UpdateOrder(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, id := range ids {
		if s, ok := r.rows[id]; ok {
			s.DisplayOrder = i
			r.rows[id] = s
		}
	}
	return nil
}
