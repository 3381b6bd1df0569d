package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"visapoint/database"
	"visapoint/models"
	"visapoint/services/payment"
	"visapoint/services/wizard"
	"visapoint/utils"
)

const handlerTimeout = 30 * time.Second

// CallbackOutcome is what the browser redirect handler reports back.
type CallbackOutcome struct {
	SessionID string               `json:"sessionId,omitempty"`
	OrderID   string               `json:"orderId"`
	Status    models.PaymentStatus `json:"status"`
}

// ReconcileReport summarises one reconcile pass.
type ReconcileReport struct {
	Checked   int `json:"checked"`
	Completed int `json:"completed"`
	Closed    int `json:"closed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

func (o *Orchestrator) onPollStatus(sessionID, orderID string, res payment.StatusResult) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if err := o.settle(ctx, sessionID, orderID, res); err != nil {
		utils.GetLogger().Error("Failed to apply polled payment status",
			zap.String("sessionID", sessionID), zap.String("orderID", orderID), zap.Error(err))
	}
}

func (o *Orchestrator) onPollTimeout(sessionID, orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	_, err := o.Dispatch(ctx, sessionID, wizard.PaymentTimedOut{OrderID: orderID})
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		utils.GetLogger().Warn("Failed to record payment timeout",
			zap.String("sessionID", sessionID), zap.Error(err))
	}
}

// settle applies a gateway status to the session that owns the order. When
// that session is gone or has moved on to another attempt, a completed
// payment is still finalized from the pending record.
func (o *Orchestrator) settle(ctx context.Context, sessionID, orderID string, res payment.StatusResult) error {
	if res.Status == models.PaymentPending {
		return nil
	}

	orphan := false
	out, err := o.Dispatch(ctx, sessionID, wizard.PaymentStatusReceived{
		OrderID:       orderID,
		Status:        res.Status,
		TransactionID: res.TransactionID,
		Message:       res.Message,
	})
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, wizard.ErrInvalidTransition):
		orphan = true
	case err != nil:
		return err
	case out.State.Payment.OrderID != orderID:
		orphan = true
	}

	if res.Status == models.PaymentCompleted {
		// The record is removed once the invoice exists, so a leftover one
		// means the session could not finalize this order.
		if _, err := o.pending.Get(ctx, orderID); errors.Is(err, ErrPendingNotFound) {
			return nil
		}
		return o.finalizeFromPending(ctx, orderID, res, orphan)
	}

	utils.GetMetrics().PaymentOutcomes.WithLabelValues(string(res.Status)).Inc()
	return o.pending.Remove(ctx, orderID)
}

func (o *Orchestrator) finalizeFromPending(ctx context.Context, orderID string, res payment.StatusResult, orphan bool) error {
	p, err := o.pending.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("completed order %s has no pending record: %w", orderID, err)
	}
	app, err := o.store.Applications.GetByID(ctx, p.ApplicationID)
	if err != nil {
		return err
	}
	_, err = o.finalize(ctx, FinalizeInput{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		OrderID:       orderID,
		PaymentID:     p.PaymentID,
		TransactionID: res.TransactionID,
		Amount:        app.TotalPrice,
		Currency:      app.Currency,
		Description:   fmt.Sprintf("%s (%s)", app.VisaType, app.ReferenceID),
	})
	if err == nil {
		utils.GetMetrics().ReconciledPayments.Inc()
		utils.GetLogger().Info("Finalized payment from pending record",
			zap.String("orderID", orderID), zap.Bool("orphan", orphan))
	}
	return err
}

// HandleCallback processes the browser's return from the gateway. The
// query is only a hint: the status is always re-read from the gateway.
func (o *Orchestrator) HandleCallback(ctx context.Context, params url.Values) (*CallbackOutcome, error) {
	cb := payment.ValidatePaymentCallback(params)
	if cb.OrderID == "" {
		return nil, ErrUnknownOrder
	}
	return o.confirmOrder(ctx, cb.OrderID, cb.PaymentID, cb.Status == models.PaymentCancelled)
}

// HandleWebhook processes a server-to-server notification for orderID.
func (o *Orchestrator) HandleWebhook(ctx context.Context, orderID string) (*CallbackOutcome, error) {
	if orderID == "" {
		return nil, ErrUnknownOrder
	}
	return o.confirmOrder(ctx, orderID, "", false)
}

func (o *Orchestrator) confirmOrder(ctx context.Context, orderID, paymentID string, cancelled bool) (*CallbackOutcome, error) {
	p, err := o.pending.Get(ctx, orderID)
	if errors.Is(err, ErrPendingNotFound) {
		// Already settled, or never started here.
		if _, ierr := o.store.Invoices.GetByOrderID(ctx, orderID); ierr == nil {
			return &CallbackOutcome{OrderID: orderID, Status: models.PaymentCompleted}, nil
		} else if !errors.Is(ierr, database.ErrNotFound) {
			return nil, ierr
		}
		return nil, ErrUnknownOrder
	}
	if err != nil {
		return nil, err
	}
	// Only the id recorded at initiation is trusted; the query may be forged.
	if p.PaymentID != "" {
		paymentID = p.PaymentID
	}

	res, err := o.gateway.CheckPaymentStatus(ctx, paymentID, orderID)
	if err != nil {
		return nil, err
	}
	status := *res
	if status.Status == models.PaymentPending && cancelled {
		// The payer backed out; the gateway keeps the payment open until it expires.
		status.Status = models.PaymentCancelled
		status.Message = "payment was cancelled"
	}
	if err := o.settle(ctx, p.SessionID, orderID, status); err != nil {
		return nil, err
	}
	return &CallbackOutcome{SessionID: p.SessionID, OrderID: orderID, Status: status.Status}, nil
}

// CheckPayment asks the gateway once for the session's current attempt.
func (o *Orchestrator) CheckPayment(ctx context.Context, sessionID string) (*Outcome, error) {
	s, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Step != wizard.StepPayment || s.Payment.PaymentID == "" {
		return nil, fmt.Errorf("no payment to check: %w", wizard.ErrInvalidTransition)
	}
	if s.Payment.Status == wizard.PaymentCompleted {
		return &Outcome{State: s.Public()}, nil
	}

	res, err := o.gateway.CheckPaymentStatus(ctx, s.Payment.PaymentID, s.Payment.OrderID)
	if err != nil {
		return nil, err
	}
	if err := o.settle(ctx, sessionID, s.Payment.OrderID, *res); err != nil {
		return nil, err
	}
	st, err := o.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Outcome{State: *st}, nil
}

// Reconcile re-checks every pending payment no poll is watching. It picks up
// payments whose browser session was closed before the gateway answered.
func (o *Orchestrator) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	pending, err := o.pending.List(ctx)
	if err != nil {
		return nil, err
	}
	report := &ReconcileReport{}
	for _, p := range pending {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if o.watcher.Watching(p.OrderID) {
			report.Skipped++
			continue
		}
		report.Checked++

		res, err := o.gateway.CheckPaymentStatus(ctx, p.PaymentID, p.OrderID)
		if err != nil {
			report.Errors++
			utils.GetLogger().Warn("Reconcile status check failed", zap.String("orderID", p.OrderID), zap.Error(err))
			continue
		}
		if res.Status == models.PaymentPending {
			continue
		}
		if err := o.settle(ctx, p.SessionID, p.OrderID, *res); err != nil {
			report.Errors++
			utils.GetLogger().Error("Reconcile failed to settle payment", zap.String("orderID", p.OrderID), zap.Error(err))
			continue
		}
		if res.Status == models.PaymentCompleted {
			report.Completed++
		} else {
			report.Closed++
		}
	}
	utils.GetLogger().Info("Payment reconcile finished",
		zap.Int("checked", report.Checked), zap.Int("completed", report.Completed),
		zap.Int("closed", report.Closed), zap.Int("errors", report.Errors))
	return report, nil
}
