package models

import "time"

// PaymentStatus is the gateway-neutral status vocabulary.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// IsTerminal reports whether no further status change is expected.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentCancelled
}

// PendingPayment links an in-flight gateway payment to its wizard session.
type PendingPayment struct {
	OrderID       string    `json:"orderId"`
	SessionID     string    `json:"sessionId"`
	ApplicationID string    `json:"applicationId"`
	PaymentID     string    `json:"paymentId"`
	Provider      string    `json:"provider"`
	CreatedAt     time.Time `json:"createdAt"`
}
