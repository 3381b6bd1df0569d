package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"visapoint/services/application"
	"visapoint/utils"
)

// webhookOrderPaths are where each gateway puts our order id in its event body.
var webhookOrderPaths = []string{
	"order_id",                               // midtrans notification
	"data.object.client_reference_id",        // stripe checkout.session.*
	"data.object.metadata.order_id",          // stripe payment_intent.*
	"resource.purchase_units.0.reference_id", // paypal CHECKOUT.ORDER.*
	"resource.supplementary_data.related_ids.order_id",
}

const maxWebhookBody = 1 << 20

// PaymentCallback handles GET /api/payments/callback, the gateway return URL.
// The query only says which order to re-check; the gateway is always asked.
func (h *HandlerBundle) PaymentCallback(c *gin.Context) {
	out, err := h.Orchestrator.HandleCallback(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		getLogger(c).Warn("Payment callback failed", zap.String("query", c.Request.URL.RawQuery), zap.Error(err))
		if h.PublicBaseURL != "" {
			c.Redirect(http.StatusFound, h.resultURL(c.Query("order_id"), "", "error"))
			return
		}
		respondError(c, "Payment could not be confirmed", err)
		return
	}
	if h.PublicBaseURL != "" {
		c.Redirect(http.StatusFound, h.resultURL(out.OrderID, out.SessionID, string(out.Status)))
		return
	}
	c.JSON(http.StatusOK, out)
}

// PaymentWebhook handles POST /api/payments/webhook. The body is only used to
// find the order id; the status is always fetched from the gateway.
func (h *HandlerBundle) PaymentWebhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid webhook body", err.Error())
		return
	}
	orderID := webhookOrderID(raw)
	if orderID == "" {
		orderID = c.Query("order_id")
	}
	if orderID == "" {
		// Acknowledge events we cannot correlate so the gateway stops retrying.
		getLogger(c).Info("Ignoring webhook without order id", zap.String("type", gjson.GetBytes(raw, "type").String()))
		c.JSON(http.StatusOK, gin.H{"ignored": true})
		return
	}

	out, err := h.Orchestrator.HandleWebhook(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, application.ErrUnknownOrder) {
			c.JSON(http.StatusOK, gin.H{"ignored": true, "orderId": orderID})
			return
		}
		respondError(c, "Webhook processing failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func webhookOrderID(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	for _, path := range webhookOrderPaths {
		if v := strings.TrimSpace(gjson.GetBytes(raw, path).String()); v != "" {
			return v
		}
	}
	return ""
}

func (h *HandlerBundle) resultURL(orderID, sessionID, status string) string {
	q := url.Values{}
	q.Set("status", status)
	if orderID != "" {
		q.Set("order_id", orderID)
	}
	if sessionID != "" {
		q.Set("session", sessionID)
	}
	return strings.TrimRight(h.PublicBaseURL, "/") + "/payment/result?" + q.Encode()
}
