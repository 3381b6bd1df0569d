// Package payment wraps the third-party payment processors behind one Gateway
// interface and polls them for the outcome of an attempt.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"visapoint/config"
	"visapoint/models"
)

// Customer is the payer's contact information.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Request describes one payment attempt.
type Request struct {
	OrderID     string
	Amount      float64
	Currency    string
	Description string
	Customer    Customer
	// ReturnURL is where the gateway sends the browser after payment.
	ReturnURL string
	// CancelURL is used by gateways with a separate cancel redirect.
	CancelURL string
	// CallbackURL receives server-to-server notifications where supported.
	CallbackURL string
}

// Initiation is the gateway's answer to a new payment.
type Initiation struct {
	PaymentID  string
	PaymentURL string
}

// StatusResult is a gateway status in the shared vocabulary.
type StatusResult struct {
	Status        models.PaymentStatus
	TransactionID string
	Message       string
}

// Gateway is a payment processor.
type Gateway interface {
	Provider() string
	InitiatePayment(ctx context.Context, req Request) (*Initiation, error)
	// CheckPaymentStatus is a read and may be called any number of times.
	CheckPaymentStatus(ctx context.Context, paymentID, orderID string) (*StatusResult, error)
}

var (
	ErrInvalidRequest  = errors.New("invalid payment request")
	ErrUnknownProvider = errors.New("unknown payment provider")
)

// GatewayError wraps a failure reported by a processor.
type GatewayError struct {
	Provider string
	Op       string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func validateRequest(req Request) error {
	switch {
	case req.OrderID == "":
		return fmt.Errorf("%w: order id is required", ErrInvalidRequest)
	case req.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	case req.Currency == "":
		return fmt.Errorf("%w: currency is required", ErrInvalidRequest)
	case req.ReturnURL == "":
		return fmt.Errorf("%w: return url is required", ErrInvalidRequest)
	}
	return nil
}

// NewGateway builds the processor selected by PAYMENT_PROVIDER.
func NewGateway(ctx context.Context, cfg config.Config) (Gateway, error) {
	switch strings.ToLower(cfg.PaymentProvider) {
	case ProviderStripe:
		return NewStripeGateway(cfg.StripeKey)
	case ProviderMidtrans:
		if err := checkMidtransCurrency(cfg.Currency); err != nil {
			return nil, err
		}
		return NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction)
	case ProviderPayPal:
		return NewPayPalGateway(ctx, cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalLive)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.PaymentProvider)
}
