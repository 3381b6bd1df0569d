package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"visapoint/models"
)

const (
	ProviderMidtrans = "midtrans"
	// Snap settles in rupiah only.
	midtransCurrency = "IDR"
)

func checkMidtransCurrency(currency string) error {
	if !strings.EqualFold(strings.TrimSpace(currency), midtransCurrency) {
		return fmt.Errorf("%w: midtrans charges %s only, got %q", ErrInvalidRequest, midtransCurrency, currency)
	}
	return nil
}

// MidtransGateway creates Snap transactions and reads their status through the
// Core API. The order id doubles as the payment id.
type MidtransGateway struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtransGateway(serverKey string, production bool) (*MidtransGateway, error) {
	if serverKey == "" {
		return nil, errors.New("midtrans server key is not configured")
	}
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{}
	g.snap.New(serverKey, env)
	g.core.New(serverKey, env)
	return g, nil
}

func (g *MidtransGateway) Provider() string { return ProviderMidtrans }

func (g *MidtransGateway) InitiatePayment(_ context.Context, req Request) (*Initiation, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := checkMidtransCurrency(req.Currency); err != nil {
		return nil, err
	}
	gross := MinorUnits(req.Amount, midtransCurrency)
	first, last := splitName(req.Customer.Name)

	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       req.OrderID,
				Price:    gross,
				Qty:      1,
				Name:     truncate(req.Description, 50),
				Category: "visa",
			},
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		Callbacks:  &snap.Callbacks{Finish: req.ReturnURL},
	}

	resp, err := g.snap.CreateTransaction(sreq)
	if err != nil {
		return nil, &GatewayError{Provider: ProviderMidtrans, Op: "create transaction", Err: err}
	}
	return &Initiation{PaymentID: req.OrderID, PaymentURL: resp.RedirectURL}, nil
}

func (g *MidtransGateway) CheckPaymentStatus(_ context.Context, paymentID, orderID string) (*StatusResult, error) {
	id := orderID
	if id == "" {
		id = paymentID
	}
	if id == "" {
		return nil, ErrInvalidRequest
	}
	resp, err := g.core.CheckTransaction(id)
	if err != nil {
		// 404 means Snap has not created the transaction yet (payer still on the page).
		if err.StatusCode == 404 {
			return &StatusResult{Status: models.PaymentPending}, nil
		}
		return nil, &GatewayError{Provider: ProviderMidtrans, Op: "check transaction", Err: err}
	}
	return &StatusResult{
		Status:        midtransStatus(resp.TransactionStatus, resp.FraudStatus),
		TransactionID: resp.TransactionID,
		Message:       resp.StatusMessage,
	}, nil
}

func midtransStatus(transactionStatus, fraudStatus string) models.PaymentStatus {
	switch strings.ToLower(transactionStatus) {
	case "capture":
		if strings.EqualFold(fraudStatus, "challenge") {
			return models.PaymentPending
		}
		return models.PaymentCompleted
	case "settlement":
		return models.PaymentCompleted
	case "deny", "failure":
		return models.PaymentFailed
	case "cancel", "expire":
		return models.PaymentCancelled
	}
	return models.PaymentPending
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, " "); i > 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// truncate keeps at most n runes so multibyte titles stay valid UTF-8.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
