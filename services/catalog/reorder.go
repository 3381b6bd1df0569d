package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"visapoint/models"
	"visapoint/utils"
)

// ReorderCommand moves the service at position Old to position New.
type ReorderCommand struct {
	Old int `json:"oldIndex"`
	New int `json:"newIndex"`
}

// Reorder applies cmd to the cached order, persists it and restores the
// previous order if the write fails. It returns the resulting order.
func (s *Service) Reorder(ctx context.Context, cmd ReorderCommand) ([]models.VisaService, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	n := len(s.cache)
	if cmd.Old < 0 || cmd.Old >= n || cmd.New < 0 || cmd.New >= n {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: index out of range", ErrInvalidReorder)
	}
	previous := make([]models.VisaService, n)
	copy(previous, s.cache)
	s.cache = move(s.cache, cmd.Old, cmd.New)
	ids := make([]string, n)
	for i := range s.cache {
		s.cache[i].DisplayOrder = i
		ids[i] = s.cache[i].ID
	}
	s.mu.Unlock()

	if err := s.repo.UpdateOrder(ctx, ids); err != nil {
		s.mu.Lock()
		s.cache = previous
		s.mu.Unlock()
		utils.GetLogger().Error("Reorder failed, restored previous order", zap.Error(err))
		return nil, fmt.Errorf("failed to save service order: %w", err)
	}
	return s.List(ctx)
}

func move(list []models.VisaService, from, to int) []models.VisaService {
	out := make([]models.VisaService, 0, len(list))
	item := list[from]
	for i, v := range list {
		if i != from {
			out = append(out, v)
		}
	}
	out = append(out[:to], append([]models.VisaService{item}, out[to:]...)...)
	return out
}
