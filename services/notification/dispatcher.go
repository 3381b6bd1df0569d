package notification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"visapoint/models"
	"visapoint/utils"
)

// Pusher sends a short alert to staff devices.
type Pusher interface {
	Push(ctx context.Context, title, body string, data map[string]string) error
}

// Dispatcher sends notifications synchronously.
type Dispatcher struct {
	functions *FunctionsClient
	pusher    Pusher
	teamEmail string
}

func NewDispatcher(functions *FunctionsClient, pusher Pusher, teamEmail string) *Dispatcher {
	if tp, ok := pusher.(*TopicPusher); ok && tp == nil {
		pusher = nil
	}
	return &Dispatcher{functions: functions, pusher: pusher, teamEmail: teamEmail}
}

var (
	_ Notifier = (*Dispatcher)(nil)
	_ Sender   = (*Dispatcher)(nil)
)

func (d *Dispatcher) NotifyApplicationSubmitted(ctx context.Context, msg models.ApplicationMessage) error {
	return errors.Join(
		d.SendApplicantConfirmation(ctx, msg),
		d.SendTeamNotification(ctx, msg),
	)
}

func (d *Dispatcher) NotifyPaymentConfirmed(ctx context.Context, msg models.PaymentMessage) error {
	return d.SendPaymentConfirmation(ctx, msg)
}

func (d *Dispatcher) SendApplicantConfirmation(ctx context.Context, msg models.ApplicationMessage) error {
	_, err := d.functions.Invoke(ctx, FunctionVisaConfirmation, map[string]any{
		"type":        "application",
		"to":          msg.Email,
		"application": msg,
	})
	return d.record("applicant_confirmation", msg.ApplicationID, err)
}

// SendTeamNotification emails the team and pushes to the team topic. Either
// succeeding counts as delivered.
func (d *Dispatcher) SendTeamNotification(ctx context.Context, msg models.ApplicationMessage) error {
	_, emailErr := d.functions.Invoke(ctx, FunctionTeamNotification, map[string]any{
		"to":          d.teamEmail,
		"application": msg,
	})

	var pushErr error
	if d.pusher != nil {
		pushErr = d.pusher.Push(ctx,
			"New visa application",
			fmt.Sprintf("%s applied for %s (%s)", msg.Name, msg.VisaType, msg.ReferenceID),
			map[string]string{"type": "new_application", "applicationId": msg.ApplicationID},
		)
	}

	var err error
	if emailErr != nil && (d.pusher == nil || pushErr != nil) {
		err = errors.Join(emailErr, pushErr)
	}
	return d.record("team", msg.ApplicationID, err)
}

func (d *Dispatcher) SendPaymentConfirmation(ctx context.Context, msg models.PaymentMessage) error {
	_, err := d.functions.Invoke(ctx, FunctionVisaConfirmation, map[string]any{
		"type":    "payment",
		"to":      msg.Email,
		"payment": msg,
	})
	if d.pusher != nil {
		if pushErr := d.pusher.Push(ctx,
			"Payment received",
			fmt.Sprintf("%s paid %.2f %s for %s", msg.Name, msg.Amount, msg.Currency, msg.ReferenceID),
			map[string]string{"type": "payment_received", "applicationId": msg.ApplicationID},
		); pushErr != nil {
			utils.GetLogger().Warn("Team payment push failed", zap.Error(pushErr))
		}
	}
	return d.record("payment_confirmation", msg.ApplicationID, err)
}

func (d *Dispatcher) record(kind, applicationID string, err error) error {
	result := "sent"
	if err != nil {
		result = "failed"
		utils.GetLogger().Warn("Notification failed",
			zap.String("kind", kind), zap.String("applicationId", applicationID), zap.Error(err))
	}
	utils.GetMetrics().NotificationsSent.WithLabelValues(kind, result).Inc()
	return err
}
