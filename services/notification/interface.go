// Package notification delivers applicant emails through hosted functions and
// team alerts through FCM.
package notification

import (
	"context"

	"visapoint/models"
)

// Notifier is what the application workflow calls. Implementations either
// send immediately (Dispatcher) or hand off to the worker (Queue).
type Notifier interface {
	NotifyApplicationSubmitted(ctx context.Context, msg models.ApplicationMessage) error
	NotifyPaymentConfirmed(ctx context.Context, msg models.PaymentMessage) error
}

// Sender performs the individual deliveries. The worker calls these per task.
type Sender interface {
	SendApplicantConfirmation(ctx context.Context, msg models.ApplicationMessage) error
	SendTeamNotification(ctx context.Context, msg models.ApplicationMessage) error
	SendPaymentConfirmation(ctx context.Context, msg models.PaymentMessage) error
}

// Function names of the hosted email endpoints.
const (
	FunctionVisaConfirmation = "send-visa-confirmation"
	FunctionTeamNotification = "send-team-notification"
)
