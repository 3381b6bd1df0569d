package payment

import (
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"visapoint/models"
)

// CallbackResult is what a return URL claims about a payment. It is advisory:
// callers confirm with CheckPaymentStatus before acting on it.
type CallbackResult struct {
	Provider  string
	OrderID   string
	PaymentID string
	Status    models.PaymentStatus
	// Recognized is false when the query carried nothing the parser understands.
	Recognized bool
}

// ValidatePaymentCallback interprets return-URL query parameters from any of
// the supported processors.
func ValidatePaymentCallback(params url.Values) CallbackResult {
	res := CallbackResult{
		Provider: strings.ToLower(params.Get("provider")),
		OrderID:  firstParam(params, "order_id", "orderId", "reference"),
		Status:   models.PaymentPending,
	}

	if sid := params.Get("session_id"); sid != "" && !strings.HasPrefix(sid, "{") {
		res.PaymentID = sid
		res.Recognized = true
		if res.Provider == "" {
			res.Provider = ProviderStripe
		}
	}
	if token := params.Get("token"); token != "" {
		res.PaymentID = token
		res.Recognized = true
		if res.Provider == "" {
			res.Provider = ProviderPayPal
		}
	}
	if cast.ToBool(params.Get("cancel")) || cast.ToBool(params.Get("cancelled")) {
		res.Status = models.PaymentCancelled
		res.Recognized = true
		return res
	}

	if ts := params.Get("transaction_status"); ts != "" {
		res.Recognized = true
		if res.Provider == "" {
			res.Provider = ProviderMidtrans
		}
		res.Status = midtransStatus(ts, params.Get("fraud_status"))
		return res
	}

	if s := params.Get("status"); s != "" {
		res.Recognized = true
		res.Status = genericStatus(s)
		return res
	}

	if code := cast.ToInt(params.Get("status_code")); code >= 400 {
		res.Recognized = true
		res.Status = models.PaymentFailed
	}
	return res
}

func genericStatus(s string) models.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "complete", "success", "succeeded", "paid", "settlement":
		return models.PaymentCompleted
	case "failed", "failure", "error", "declined", "deny":
		return models.PaymentFailed
	case "cancelled", "canceled", "cancel", "expired", "expire":
		return models.PaymentCancelled
	}
	return models.PaymentPending
}

func firstParam(params url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(params.Get(k)); v != "" {
			return v
		}
	}
	return ""
}
