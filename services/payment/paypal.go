package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/plutov/paypal/v4"
	"go.uber.org/zap"

	"visapoint/models"
)

const ProviderPayPal = "paypal"

const statusCompleted = "COMPLETED"

// PayPalGateway uses the Orders v2 API with CAPTURE intent. Approved orders
// are captured on the first status check that sees them.
type PayPalGateway struct {
	client *paypal.Client
}

func NewPayPalGateway(ctx context.Context, clientID, secret string, live bool) (*PayPalGateway, error) {
	if clientID == "" || secret == "" {
		return nil, errors.New("paypal credentials are not configured")
	}
	base := paypal.APIBaseSandBox
	if live {
		base = paypal.APIBaseLive
	}
	client, err := paypal.NewClient(clientID, secret, base)
	if err != nil {
		return nil, err
	}
	if _, err := client.GetAccessToken(ctx); err != nil {
		return nil, &GatewayError{Provider: ProviderPayPal, Op: "get access token", Err: err}
	}
	return &PayPalGateway{client: client}, nil
}

func (g *PayPalGateway) Provider() string { return ProviderPayPal }

func (g *PayPalGateway) InitiatePayment(ctx context.Context, req Request) (*Initiation, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: req.OrderID,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(req.Currency),
				Value:    FormatAmount(req.Amount, req.Currency),
			},
			Description: truncate(req.Description, 127),
		},
	}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: req.ReturnURL,
		CancelURL: cancelURL(req),
	}

	order, err := g.client.CreateOrder(ctx, "CAPTURE", units, nil, appCtx)
	if err != nil {
		return nil, &GatewayError{Provider: ProviderPayPal, Op: "create order", Err: err}
	}
	approve := approvalURL(order)
	if approve == "" {
		return nil, &GatewayError{Provider: ProviderPayPal, Op: "create order", Err: errors.New("no approval link in response")}
	}
	return &Initiation{PaymentID: order.ID, PaymentURL: approve}, nil
}

func (g *PayPalGateway) CheckPaymentStatus(ctx context.Context, paymentID, orderID string) (*StatusResult, error) {
	if paymentID == "" {
		return nil, ErrInvalidRequest
	}
	order, err := g.client.GetOrder(ctx, paymentID)
	if err != nil {
		return nil, &GatewayError{Provider: ProviderPayPal, Op: "get order", Err: err}
	}

	switch order.Status {
	case statusCompleted:
		return &StatusResult{Status: models.PaymentCompleted, TransactionID: order.ID}, nil
	case "VOIDED":
		return &StatusResult{Status: models.PaymentCancelled, Message: "order voided"}, nil
	case "APPROVED":
	default:
		return &StatusResult{Status: models.PaymentPending}, nil
	}

	capture, err := g.client.CaptureOrder(ctx, paymentID, paypal.CaptureOrderRequest{})
	if err != nil {
		zap.L().Warn("PayPal capture failed", zap.String("paypalOrder", paymentID), zap.String("orderId", orderID), zap.Error(err))
		return &StatusResult{Status: models.PaymentFailed, Message: "capture failed"}, nil
	}
	if capture.Status != statusCompleted {
		return &StatusResult{Status: models.PaymentFailed, Message: "capture status " + capture.Status}, nil
	}
	return &StatusResult{Status: models.PaymentCompleted, TransactionID: capture.ID}, nil
}

func approvalURL(order *paypal.Order) string {
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}
