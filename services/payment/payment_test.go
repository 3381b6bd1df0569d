package payment

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"visapoint/config"
	"visapoint/models"
)

func TestGenerateOrderID_FormatAndUniqueness(t *testing.T) {
	pattern := regexp.MustCompile(`^VISA-[A-Z0-9]{1,8}-\d{13}-[A-Z0-9]{4}$`)

	id := GenerateOrderID("3f2a9c1e-77b0-4c52-9d8e-aa01bc23de45")
	assert.Regexp(t, pattern, id)
	assert.Contains(t, id, "VISA-3F2A9C1E-")

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		id := GenerateOrderID("app")
		_, dup := seen[id]
		require.False(t, dup, "duplicate order id %s", id)
		seen[id] = struct{}{}
	}

	assert.Regexp(t, pattern, GenerateOrderID(""))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(61000), MinorUnits(610, "SAR"))
	assert.Equal(t, int64(1999), MinorUnits(19.99, "usd"))
	assert.Equal(t, int64(5000), MinorUnits(5000, "JPY"))
	assert.Equal(t, int64(12345), MinorUnits(12.345, "KWD"))
	assert.Equal(t, "610.00", FormatAmount(610, "SAR"))
}

func TestValidatePaymentCallback(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		status   models.PaymentStatus
		provider string
		payment  string
		order    string
		known    bool
	}{
		{"generic success", "order_id=VISA-1&status=success", models.PaymentCompleted, "", "", "VISA-1", true},
		{"generic failure", "order_id=VISA-1&status=failed", models.PaymentFailed, "", "", "VISA-1", true},
		{"generic cancel", "status=canceled", models.PaymentCancelled, "", "", "", true},
		{"stripe return", "order_id=VISA-2&session_id=cs_test_123", models.PaymentPending, ProviderStripe, "cs_test_123", "VISA-2", true},
		{"stripe cancel", "order_id=VISA-2&cancel=true", models.PaymentCancelled, "", "", "VISA-2", true},
		{"midtrans settlement", "order_id=VISA-3&status_code=200&transaction_status=settlement", models.PaymentCompleted, ProviderMidtrans, "", "VISA-3", true},
		{"midtrans challenge", "order_id=VISA-3&transaction_status=capture&fraud_status=challenge", models.PaymentPending, ProviderMidtrans, "", "VISA-3", true},
		{"midtrans expire", "order_id=VISA-3&transaction_status=expire", models.PaymentCancelled, ProviderMidtrans, "", "VISA-3", true},
		{"paypal approve", "order_id=VISA-4&token=5O190127TN364715T&PayerID=ABC", models.PaymentPending, ProviderPayPal, "5O190127TN364715T", "VISA-4", true},
		{"paypal cancel", "order_id=VISA-4&token=5O190127TN364715T&cancel=1", models.PaymentCancelled, ProviderPayPal, "5O190127TN364715T", "VISA-4", true},
		{"error code", "order_id=VISA-5&status_code=407", models.PaymentFailed, "", "", "VISA-5", true},
		{"bare return", "order_id=VISA-6", models.PaymentPending, "", "", "VISA-6", false},
		{"empty", "", models.PaymentPending, "", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			res := ValidatePaymentCallback(q)
			assert.Equal(t, tc.status, res.Status)
			assert.Equal(t, tc.provider, res.Provider)
			assert.Equal(t, tc.payment, res.PaymentID)
			assert.Equal(t, tc.order, res.OrderID)
			assert.Equal(t, tc.known, res.Recognized)
		})
	}
}

func TestStripeStatusMapping(t *testing.T) {
	assert.Equal(t, models.PaymentCompleted, stripeStatus(stripe.CheckoutSessionStatusComplete, stripe.CheckoutSessionPaymentStatusPaid))
	assert.Equal(t, models.PaymentPending, stripeStatus(stripe.CheckoutSessionStatusComplete, stripe.CheckoutSessionPaymentStatusUnpaid))
	assert.Equal(t, models.PaymentPending, stripeStatus(stripe.CheckoutSessionStatusOpen, stripe.CheckoutSessionPaymentStatusUnpaid))
	assert.Equal(t, models.PaymentCancelled, stripeStatus(stripe.CheckoutSessionStatusExpired, stripe.CheckoutSessionPaymentStatusUnpaid))
}

func TestStripeReturnURLs(t *testing.T) {
	req := Request{ReturnURL: "https://api.example.com/api/payments/callback?order_id=VISA-1"}
	assert.Equal(t, "https://api.example.com/api/payments/callback?order_id=VISA-1&session_id={CHECKOUT_SESSION_ID}", withSessionPlaceholder(req.ReturnURL))
	assert.Equal(t, "https://api.example.com/api/payments/callback?cancel=true&order_id=VISA-1", cancelURL(req))
}

func TestValidateRequest(t *testing.T) {
	ok := Request{OrderID: "VISA-1", Amount: 10, Currency: "SAR", ReturnURL: "https://x"}
	assert.NoError(t, validateRequest(ok))

	bad := ok
	bad.Amount = 0
	assert.ErrorIs(t, validateRequest(bad), ErrInvalidRequest)

	bad = ok
	bad.OrderID = ""
	assert.ErrorIs(t, validateRequest(bad), ErrInvalidRequest)
}

func TestMidtransRejectsForeignCurrency(t *testing.T) {
	g, err := NewMidtransGateway("SB-Mid-server-test", false)
	require.NoError(t, err)

	_, err = g.InitiatePayment(context.Background(), Request{
		OrderID: "VISA-1", Amount: 1220, Currency: "SAR", ReturnURL: "https://api.example.com/cb",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.NoError(t, checkMidtransCurrency("idr"))

	_, err = NewGateway(context.Background(), config.Config{
		PaymentProvider: ProviderMidtrans, Currency: "SAR", MidtransServerKey: "SB-Mid-server-test",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	gw, err := NewGateway(context.Background(), config.Config{
		PaymentProvider: ProviderMidtrans, Currency: "IDR", MidtransServerKey: "SB-Mid-server-test",
	})
	require.NoError(t, err)
	assert.Equal(t, ProviderMidtrans, gw.Provider())
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	title := "تأشيرة إسبانيا السياحية"
	out := truncate(title, 5)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 5, utf8.RuneCountInString(out))
	assert.Equal(t, "short", truncate("short", 50))
}

// scriptedGateway returns statuses in order, repeating the last one.
type scriptedGateway struct {
	mu       sync.Mutex
	statuses []models.PaymentStatus
	calls    int
	err      error
}

func (g *scriptedGateway) Provider() string { return "scripted" }

func (g *scriptedGateway) InitiatePayment(context.Context, Request) (*Initiation, error) {
	return &Initiation{PaymentID: "pay_1", PaymentURL: "https://pay.example.com/1"}, nil
}

func (g *scriptedGateway) CheckPaymentStatus(context.Context, string, string) (*StatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	i := g.calls - 1
	if i >= len(g.statuses) {
		i = len(g.statuses) - 1
	}
	return &StatusResult{Status: g.statuses[i], TransactionID: "txn_1"}, nil
}

func (g *scriptedGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestWatcher_DeliversFinalStatusOnce(t *testing.T) {
	gw := &scriptedGateway{statuses: []models.PaymentStatus{models.PaymentPending, models.PaymentPending, models.PaymentCompleted}}
	got := make(chan StatusResult, 4)
	w := NewWatcher(gw, Handlers{
		OnStatus: func(sessionID, orderID string, res StatusResult) {
			assert.Equal(t, "sess-1", sessionID)
			assert.Equal(t, "VISA-1", orderID)
			got <- res
		},
	}, 5*time.Millisecond, time.Second)
	defer w.Close()

	w.Start("sess-1", "VISA-1", "pay_1")

	select {
	case res := <-got:
		assert.Equal(t, models.PaymentCompleted, res.Status)
		assert.Equal(t, "txn_1", res.TransactionID)
	case <-time.After(time.Second):
		t.Fatal("no status delivered")
	}
	assert.Eventually(t, func() bool { return !w.Active("sess-1") }, time.Second, 5*time.Millisecond)
	assert.Len(t, got, 0)
}

func TestWatcher_TimeoutCallsHandler(t *testing.T) {
	gw := &scriptedGateway{statuses: []models.PaymentStatus{models.PaymentPending}}
	var timedOut atomic.Int32
	w := NewWatcher(gw, Handlers{
		OnStatus:  func(string, string, StatusResult) { t.Error("unexpected status") },
		OnTimeout: func(string, string) { timedOut.Add(1) },
	}, 5*time.Millisecond, 40*time.Millisecond)
	defer w.Close()

	w.Start("sess-1", "VISA-1", "pay_1")

	assert.Eventually(t, func() bool { return timedOut.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !w.Active("sess-1") }, time.Second, 5*time.Millisecond)
	assert.Greater(t, gw.Calls(), 0)
}

func TestWatcher_StopSuppressesCallbacks(t *testing.T) {
	gw := &scriptedGateway{statuses: []models.PaymentStatus{models.PaymentPending}}
	var calls atomic.Int32
	w := NewWatcher(gw, Handlers{
		OnStatus:  func(string, string, StatusResult) { calls.Add(1) },
		OnTimeout: func(string, string) { calls.Add(1) },
	}, 5*time.Millisecond, 30*time.Millisecond)
	defer w.Close()

	w.Start("sess-1", "VISA-1", "pay_1")
	require.True(t, w.Active("sess-1"))
	assert.True(t, w.Watching("VISA-1"))

	w.Stop("sess-1")
	assert.False(t, w.Active("sess-1"))

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_RestartReplacesPoll(t *testing.T) {
	gw := &scriptedGateway{err: errors.New("gateway down")}
	var timeouts atomic.Int32
	var lastOrder atomic.Value
	w := NewWatcher(gw, Handlers{
		OnTimeout: func(_ string, orderID string) {
			timeouts.Add(1)
			lastOrder.Store(orderID)
		},
	}, 5*time.Millisecond, 60*time.Millisecond)
	defer w.Close()

	w.Start("sess-1", "VISA-1", "pay_1")
	w.Start("sess-1", "VISA-2", "pay_2")

	assert.Eventually(t, func() bool { return timeouts.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), timeouts.Load())
	assert.Equal(t, "VISA-2", lastOrder.Load())
	assert.False(t, w.Watching("VISA-1"))
}
