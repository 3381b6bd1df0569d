// Package catalog serves the visa service catalog with an in-memory cache of
// the ordered list.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"visapoint/database"
	serviceRepo "visapoint/database/repository/service"
	"visapoint/models"
	"visapoint/utils"
)

var (
	ErrInvalidService = errors.New("invalid service")
	ErrInvalidReorder = errors.New("invalid reorder")
)

// Service is the catalog accessor shared by public and admin handlers.
type Service struct {
	repo     serviceRepo.ServiceRepository
	currency string

	mu     sync.RWMutex
	cache  []models.VisaService
	loaded bool
}

func NewService(repo serviceRepo.ServiceRepository, defaultCurrency string) *Service {
	return &Service{repo: repo, currency: defaultCurrency}
}

// List returns every service in display order.
func (s *Service) List(ctx context.Context) ([]models.VisaService, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.VisaService, len(s.cache))
	copy(out, s.cache)
	return out, nil
}

// ListActive returns the services applicants can choose from.
func (s *Service) ListActive(ctx context.Context) ([]models.VisaService, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, svc := range all {
		if svc.Active {
			active = append(active, svc)
		}
	}
	return active, nil
}

// GetBySlug finds a service by slug, falling back to a case-insensitive title
// match for links that carry the title.
func (s *Service) GetBySlug(ctx context.Context, slugOrTitle string) (*models.VisaService, error) {
	key := strings.TrimSpace(slugOrTitle)
	svc, err := s.repo.GetBySlug(ctx, key)
	if err == nil {
		return svc, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	all, lerr := s.List(ctx)
	if lerr != nil {
		return nil, lerr
	}
	for i := range all {
		if strings.EqualFold(all[i].Title, key) || all[i].Slug == Slugify(key) {
			return &all[i], nil
		}
	}
	return nil, err
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.VisaService, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, svc *models.VisaService) error {
	if err := s.prepare(svc); err != nil {
		return err
	}
	if svc.DisplayOrder == 0 {
		if all, err := s.List(ctx); err == nil {
			svc.DisplayOrder = len(all)
		}
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return err
	}
	s.invalidate()
	utils.GetLogger().Info("Service created", zap.String("serviceId", svc.ID), zap.String("slug", svc.Slug))
	return nil
}

func (s *Service) Update(ctx context.Context, svc *models.VisaService) error {
	if svc.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidService)
	}
	if err := s.prepare(svc); err != nil {
		return err
	}
	svc.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, svc); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) prepare(svc *models.VisaService) error {
	svc.Title = strings.TrimSpace(svc.Title)
	if svc.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidService)
	}
	if svc.BasePrice < 0 {
		return fmt.Errorf("%w: base price cannot be negative", ErrInvalidService)
	}
	if svc.Slug == "" {
		svc.Slug = Slugify(svc.Title)
	} else {
		svc.Slug = Slugify(svc.Slug)
	}
	if svc.Slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidService)
	}
	if svc.Currency == "" {
		svc.Currency = s.currency
	}
	for _, n := range svc.Nationalities {
		if n.Price != nil && *n.Price < 0 {
			return fmt.Errorf("%w: nationality %s has a negative price", ErrInvalidService, n.Value)
		}
	}
	for _, a := range svc.AppointmentTypes {
		if a.Price != nil && *a.Price < 0 {
			return fmt.Errorf("%w: appointment type %s has a negative price", ErrInvalidService, a.Value)
		}
	}
	return nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads the cache from the store.
func (s *Service) Refresh(ctx context.Context) error {
	list, err := s.repo.List(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to load services: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].DisplayOrder < list[j].DisplayOrder })
	s.mu.Lock()
	s.cache = list
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *Service) invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

// Slugify lower-cases s and joins its words with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
