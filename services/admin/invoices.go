package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"visapoint/models"
	"visapoint/utils"
)

// InvoiceInput is an invoice written by staff.
type InvoiceInput struct {
	ClientID           string     `json:"clientId" binding:"required"`
	ApplicationID      string     `json:"applicationId"`
	Amount             float64    `json:"amount" binding:"required,gt=0"`
	Currency           string     `json:"currency"`
	Status             string     `json:"status"`
	ServiceDescription string     `json:"serviceDescription" binding:"required"`
	IssueDate          *time.Time `json:"issueDate"`
	DueDate            *time.Time `json:"dueDate"`
	PaymentDate        *time.Time `json:"paymentDate"`
}

func (s *Service) ListInvoices(ctx context.Context, status string) ([]models.Invoice, error) {
	return s.store.Invoices.List(ctx, status)
}

// CreateInvoice writes a manual invoice with a fresh invoice number.
func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput, defaultCurrency string) (*models.Invoice, error) {
	if strings.TrimSpace(in.ClientID) == "" || in.Amount <= 0 {
		return nil, fmt.Errorf("%w: client and a positive amount are required", ErrInvalidInvoice)
	}
	status := in.Status
	if status == "" {
		status = models.InvoiceUnpaid
	}
	if !models.IsValidInvoiceStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	now := time.Now()
	inv := &models.Invoice{
		InvoiceNumber:      utils.NewInvoiceNumber(now),
		ClientID:           in.ClientID,
		ApplicationID:      in.ApplicationID,
		Amount:             in.Amount,
		Currency:           in.Currency,
		Status:             status,
		ServiceDescription: in.ServiceDescription,
		IssueDate:          now,
		DueDate:            now.AddDate(0, 0, 14),
		PaymentDate:        in.PaymentDate,
	}
	if inv.Currency == "" {
		inv.Currency = defaultCurrency
	}
	if in.IssueDate != nil {
		inv.IssueDate = *in.IssueDate
	}
	if in.DueDate != nil {
		inv.DueDate = *in.DueDate
	}
	if status == models.InvoicePaid && inv.PaymentDate == nil {
		inv.PaymentDate = &now
	}
	if err := s.store.Invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Invoice created by staff", zap.String("invoiceNumber", inv.InvoiceNumber))
	return inv, nil
}

// UpdateInvoice replaces the editable fields of an invoice.
func (s *Service) UpdateInvoice(ctx context.Context, id string, in InvoiceInput) (*models.Invoice, error) {
	inv, err := s.store.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != "" {
		if !models.IsValidInvoiceStatus(in.Status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
		}
		inv.Status = in.Status
	}
	if in.Amount > 0 {
		inv.Amount = in.Amount
	}
	if in.Currency != "" {
		inv.Currency = in.Currency
	}
	if in.ServiceDescription != "" {
		inv.ServiceDescription = in.ServiceDescription
	}
	if in.ClientID != "" {
		inv.ClientID = in.ClientID
	}
	if in.IssueDate != nil {
		inv.IssueDate = *in.IssueDate
	}
	if in.DueDate != nil {
		inv.DueDate = *in.DueDate
	}
	if in.PaymentDate != nil {
		inv.PaymentDate = in.PaymentDate
	}
	if err := s.store.Invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// BulkInvoiceStatus applies one status to every invoice id.
func (s *Service) BulkInvoiceStatus(ctx context.Context, ids []string, status string) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, ErrNoIDs
	}
	if !models.IsValidInvoiceStatus(status) {
		return BulkResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res := newBulkResult()
	for _, id := range ids {
		res.record(id, s.store.Invoices.UpdateStatus(ctx, id, status))
	}
	return res, nil
}

func (s *Service) BulkDeleteInvoices(ctx context.Context, ids []string) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, ErrNoIDs
	}
	res := newBulkResult()
	for _, id := range ids {
		res.record(id, s.store.Invoices.Delete(ctx, id))
	}
	return res, nil
}
