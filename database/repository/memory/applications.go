package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"visapoint/database"
	"visapoint/database/repository"
	"visapoint/models"

	"github.com/google/uuid"
)

var _ repository.ApplicationRepository = (*Applications)(nil)

// Applications is an in-memory ApplicationRepository.
type Applications struct {
	mu   sync.RWMutex
	rows map[string]models.Application
}

func NewApplications() *Applications {
	return &Applications{rows: make(map[string]models.Application)}
}

func copyApplication(a models.Application) models.Application {
	a.Travellers = append([]models.Traveller(nil), a.Travellers...)
	return a
}

func (r *Applications) Create(_ context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	if _, ok := r.rows[app.ID]; ok {
		return fmt.Errorf("failed to create application: %w", database.ErrDuplicate)
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	r.rows[app.ID] = copyApplication(*app)
	return nil
}

func (r *Applications) GetByID(_ context.Context, id string) (*models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, database.ErrNotFound)
	}
	out := copyApplication(a)
	return &out, nil
}

func (r *Applications) GetByOrderID(_ context.Context, orderID string) (*models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.rows {
		if orderID != "" && a.OrderID == orderID {
			out := copyApplication(a)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("application for order %s: %w", orderID, database.ErrNotFound)
}

func matches(a models.Application, f models.ApplicationFilter) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Paid != nil && a.Paid != *f.Paid {
		return false
	}
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.Name), term) &&
			!strings.Contains(strings.ToLower(a.Email), term) &&
			!strings.Contains(strings.ToLower(a.ReferenceID), term) {
			return false
		}
	}
	return true
}

func less(a, b models.Application, sortBy string) bool {
	switch sortBy {
	case "totalPrice":
		return a.TotalPrice < b.TotalPrice
	case "name":
		return a.Name < b.Name
	case "status":
		return a.Status < b.Status
	case "travelDate":
		return a.TravelDate < b.TravelDate
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (r *Applications) List(_ context.Context, f models.ApplicationFilter) ([]models.Application, error) {
	r.mu.RLock()
	out := []models.Application{}
	for _, a := range r.rows {
		if matches(a, f) {
			out = append(out, copyApplication(a))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if f.Ascending {
			return less(out[i], out[j], f.SortBy)
		}
		return less(out[j], out[i], f.SortBy)
	})
	if f.Offset > 0 {
		if f.Offset >= int64(len(out)) {
			return []models.Application{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < int64(len(out)) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *Applications) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	return r.List(ctx, models.ApplicationFilter{UserID: userID})
}

func (r *Applications) mutate(id string, fn func(*models.Application)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("application %s: %w", id, database.ErrNotFound)
	}
	fn(&a)
	a.UpdatedAt = time.Now()
	r.rows[id] = a
	return nil
}

func (r *Applications) UpdateStatus(_ context.Context, id, status string) error {
	return r.mutate(id, func(a *models.Application) { a.Status = status })
}

func (r *Applications) MarkPaid(_ context.Context, id string, ref models.PaymentRef) error {
	return r.mutate(id, func(a *models.Application) {
		a.Paid = true
		a.PaymentID = ref.PaymentID
		if ref.OrderID != "" {
			a.OrderID = ref.OrderID
		}
		if ref.TransactionID != "" {
			a.TransactionID = ref.TransactionID
		}
	})
}

func (r *Applications) SetOrderID(_ context.Context, id, orderID string) error {
	return r.mutate(id, func(a *models.Application) { a.OrderID = orderID })
}

func (r *Applications) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("application %s: %w", id, database.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}
