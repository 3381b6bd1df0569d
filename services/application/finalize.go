package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"visapoint/database"
	"visapoint/models"
	"visapoint/services/wizard"
	"visapoint/utils"
)

// FinalizeInput describes one completed payment attempt.
type FinalizeInput struct {
	ApplicationID string
	UserID        string
	OrderID       string
	PaymentID     string
	TransactionID string
	Amount        float64
	Currency      string
	Description   string
}

func finalizeInput(e wizard.FinalizePayment) FinalizeInput {
	return FinalizeInput(e)
}

const invoiceNumberAttempts = 3

// finalize writes the invoice for a completed payment and marks the
// application paid. It is keyed on the order id and safe to repeat.
func (o *Orchestrator) finalize(ctx context.Context, in FinalizeInput) (*models.Invoice, error) {
	if in.OrderID == "" || in.ApplicationID == "" {
		return nil, fmt.Errorf("finalize: order and application ids are required")
	}

	app, err := o.store.Applications.GetByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	inv, err := o.store.Invoices.GetByOrderID(ctx, in.OrderID)
	switch {
	case err == nil:
		utils.GetLogger().Info("Invoice already exists for order", zap.String("orderID", in.OrderID))
	case errors.Is(err, database.ErrNotFound):
		inv, err = o.createInvoice(ctx, app, in)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("finalize: %w", err)
	}

	if err := o.markPaid(ctx, app, in); err != nil {
		return nil, err
	}
	if err := o.pending.Remove(ctx, in.OrderID); err != nil {
		utils.GetLogger().Warn("Failed to clear pending payment", zap.String("orderID", in.OrderID), zap.Error(err))
	}
	return inv, nil
}

func (o *Orchestrator) createInvoice(ctx context.Context, app *models.Application, in FinalizeInput) (*models.Invoice, error) {
	now := time.Now()
	clientID := in.UserID
	if clientID == "" {
		clientID = app.UserID
	}
	currency := in.Currency
	if currency == "" {
		currency = app.Currency
	}
	description := in.Description
	if description == "" {
		description = app.VisaType
	}

	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		inv := &models.Invoice{
			InvoiceNumber:      utils.NewInvoiceNumber(now),
			ClientID:           clientID,
			ApplicationID:      app.ID,
			OrderID:            in.OrderID,
			PaymentID:          in.PaymentID,
			Amount:             in.Amount,
			Currency:           currency,
			Status:             models.InvoicePaid,
			ServiceDescription: description,
			IssueDate:          now,
			DueDate:            now,
			PaymentDate:        &now,
		}
		err := o.store.Invoices.Create(ctx, inv)
		if err == nil {
			utils.GetMetrics().InvoicesCreated.Inc()
			utils.GetLogger().Info("Invoice created",
				zap.String("invoiceNumber", inv.InvoiceNumber),
				zap.String("applicationID", app.ID),
				zap.String("orderID", in.OrderID))
			o.notifyPayment(ctx, app, inv, in)
			return inv, nil
		}
		if !errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("failed to create invoice: %w", err)
		}
		// Either another finalizer won the race for this order or the
		// number collided.
		if existing, gerr := o.store.Invoices.GetByOrderID(ctx, in.OrderID); gerr == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("failed to create invoice: %w", database.ErrDuplicate)
}

func (o *Orchestrator) markPaid(ctx context.Context, app *models.Application, in FinalizeInput) error {
	if app.Paid && app.OrderID != in.OrderID {
		// A second attempt also went through; keep the first payment's refs.
		utils.GetLogger().Warn("Additional payment received for paid application",
			zap.String("applicationID", app.ID), zap.String("orderID", in.OrderID))
		return nil
	}
	if app.Paid {
		return nil
	}
	err := o.store.Applications.MarkPaid(ctx, app.ID, models.PaymentRef{
		PaymentID:     in.PaymentID,
		OrderID:       in.OrderID,
		TransactionID: in.TransactionID,
	})
	if err != nil {
		return fmt.Errorf("failed to mark application paid: %w", err)
	}
	if err := o.store.Statuses.Append(ctx, &models.StatusEntry{
		ApplicationID: app.ID,
		Status:        app.Status,
		Note:          "Payment received for order " + in.OrderID,
		Actor:         "system",
	}); err != nil {
		utils.GetLogger().Warn("Failed to record payment in history", zap.String("applicationID", app.ID), zap.Error(err))
	}
	utils.GetMetrics().PaymentOutcomes.WithLabelValues(string(models.PaymentCompleted)).Inc()
	return nil
}

func (o *Orchestrator) notifyPayment(ctx context.Context, app *models.Application, inv *models.Invoice, in FinalizeInput) {
	msg := models.PaymentMessage{
		ApplicationID: app.ID,
		ReferenceID:   app.ReferenceID,
		InvoiceNumber: inv.InvoiceNumber,
		Name:          app.Name,
		Email:         app.Email,
		VisaType:      app.VisaType,
		Amount:        inv.Amount,
		Currency:      inv.Currency,
		OrderID:       in.OrderID,
		TransactionID: in.TransactionID,
	}
	if err := o.notifier.NotifyPaymentConfirmed(ctx, msg); err != nil {
		utils.GetLogger().Warn("Payment confirmation failed",
			zap.String("applicationID", app.ID), zap.Error(err))
	}
}
