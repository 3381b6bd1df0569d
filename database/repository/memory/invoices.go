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

var _ repository.InvoiceRepository = (*Invoices)(nil)

// Invoices is an in-memory InvoiceRepository. Like the Mongo index, it allows
// at most one invoice per non-empty order id.
type Invoices struct {
	mu   sync.RWMutex
	rows map[string]models.Invoice
}

func NewInvoices() *Invoices {
	return &Invoices{rows: make(map[string]models.Invoice)}
}

func (r *Invoices) Create(_ context.Context, inv *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	for _, existing := range r.rows {
		if existing.ID == inv.ID ||
			(inv.OrderID != "" && existing.OrderID == inv.OrderID) ||
			(inv.InvoiceNumber != "" && existing.InvoiceNumber == inv.InvoiceNumber) {
			return fmt.Errorf("failed to create invoice: %w", database.ErrDuplicate)
		}
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	r.rows[inv.ID] = *inv
	return nil
}

func (r *Invoices) GetByID(_ context.Context, id string) (*models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}
	return &inv, nil
}

func (r *Invoices) GetByOrderID(_ context.Context, orderID string) (*models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.rows {
		if orderID != "" && inv.OrderID == orderID {
			out := inv
			return &out, nil
		}
	}
	return nil, fmt.Errorf("invoice for order %s: %w", orderID, database.ErrNotFound)
}

func (r *Invoices) filter(keep func(models.Invoice) bool) []models.Invoice {
	r.mu.RLock()
	out := []models.Invoice{}
	for _, inv := range r.rows {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return out
}

func (r *Invoices) List(_ context.Context, status string) ([]models.Invoice, error) {
	return r.filter(func(inv models.Invoice) bool { return status == "" || inv.Status == status }), nil
}

func (r *Invoices) ListByClient(_ context.Context, clientID string) ([]models.Invoice, error) {
	return r.filter(func(inv models.Invoice) bool { return inv.ClientID == clientID }), nil
}

func (r *Invoices) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}
	now := time.Now()
	inv.Status = status
	inv.UpdatedAt = now
	if status == models.InvoicePaid {
		inv.PaymentDate = &now
	}
	r.rows[id] = inv
	return nil
}

func (r *Invoices) Update(_ context.Context, inv *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[inv.ID]
	if !ok {
		return fmt.Errorf("invoice %s: %w", inv.ID, database.ErrNotFound)
	}
	inv.OrderID = existing.OrderID
	inv.PaymentID = existing.PaymentID
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = time.Now()
	r.rows[inv.ID] = *inv
	return nil
}

func (r *Invoices) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}
