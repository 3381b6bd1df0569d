package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"visapoint/models"
)

const ProviderStripe = "stripe"

// StripeGateway uses Stripe Checkout Sessions. The session id is the payment id.
type StripeGateway struct{}

func NewStripeGateway(key string) (*StripeGateway, error) {
	if key == "" {
		return nil, errors.New("stripe key is not configured")
	}
	stripe.Key = key
	return &StripeGateway{}, nil
}

func (g *StripeGateway) Provider() string { return ProviderStripe }

func (g *StripeGateway) InitiatePayment(ctx context.Context, req Request) (*Initiation, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(withSessionPlaceholder(req.ReturnURL)),
		CancelURL:         stripe.String(cancelURL(req)),
		ClientReferenceID: stripe.String(req.OrderID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(MinorUnits(req.Amount, req.Currency)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.Customer.Email != "" {
		params.CustomerEmail = stripe.String(req.Customer.Email)
	}
	params.AddMetadata("order_id", req.OrderID)
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, &GatewayError{Provider: ProviderStripe, Op: "create checkout session", Err: err}
	}
	return &Initiation{PaymentID: s.ID, PaymentURL: s.URL}, nil
}

func (g *StripeGateway) CheckPaymentStatus(ctx context.Context, paymentID, orderID string) (*StatusResult, error) {
	if paymentID == "" {
		return nil, ErrInvalidRequest
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(paymentID, params)
	if err != nil {
		return nil, &GatewayError{Provider: ProviderStripe, Op: "get checkout session", Err: err}
	}

	res := &StatusResult{Status: stripeStatus(s.Status, s.PaymentStatus)}
	if s.PaymentIntent != nil {
		res.TransactionID = s.PaymentIntent.ID
	}
	if res.TransactionID == "" {
		res.TransactionID = s.ID
	}
	return res, nil
}

func stripeStatus(status stripe.CheckoutSessionStatus, paid stripe.CheckoutSessionPaymentStatus) models.PaymentStatus {
	switch {
	case status == stripe.CheckoutSessionStatusComplete &&
		(paid == stripe.CheckoutSessionPaymentStatusPaid || paid == stripe.CheckoutSessionPaymentStatusNoPaymentRequired):
		return models.PaymentCompleted
	case status == stripe.CheckoutSessionStatusExpired:
		return models.PaymentCancelled
	}
	return models.PaymentPending
}

// Stripe substitutes the literal placeholder with the session id on redirect.
func withSessionPlaceholder(returnURL string) string {
	sep := "?"
	if strings.Contains(returnURL, "?") {
		sep = "&"
	}
	return returnURL + sep + "session_id={CHECKOUT_SESSION_ID}"
}

func cancelURL(req Request) string {
	if req.CancelURL != "" {
		return req.CancelURL
	}
	u, err := url.Parse(req.ReturnURL)
	if err != nil {
		return req.ReturnURL
	}
	q := u.Query()
	q.Set("cancel", "true")
	u.RawQuery = q.Encode()
	return u.String()
}
