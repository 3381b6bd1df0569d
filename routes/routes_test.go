package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"visapoint/database/repository"
	"visapoint/database/repository/memory"
	"visapoint/handlers"
	"visapoint/models"
	"visapoint/services/admin"
	"visapoint/services/application"
	"visapoint/services/catalog"
	"visapoint/services/identity"
	"visapoint/services/payment"
	"visapoint/services/session"
	"visapoint/services/storage"
	"visapoint/services/wizard"
)

const adminLoginPath = "/api/staff/login"

type stubGateway struct {
	mu       sync.Mutex
	statuses map[string]models.PaymentStatus
}

func (g *stubGateway) Provider() string { return "stub" }

func (g *stubGateway) InitiatePayment(_ context.Context, req payment.Request) (*payment.Initiation, error) {
	return &payment.Initiation{PaymentID: "pay-" + req.OrderID, PaymentURL: "https://pay.example.com/" + req.OrderID}, nil
}

func (g *stubGateway) CheckPaymentStatus(_ context.Context, _, orderID string) (*payment.StatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.statuses[orderID]
	if !ok {
		st = models.PaymentPending
	}
	return &payment.StatusResult{Status: st, TransactionID: "tx-" + orderID}, nil
}

func (g *stubGateway) set(orderID string, st models.PaymentStatus) {
	g.mu.Lock()
	g.statuses[orderID] = st
	g.mu.Unlock()
}

type silentNotifier struct{}

func (silentNotifier) NotifyApplicationSubmitted(context.Context, models.ApplicationMessage) error {
	return nil
}

func (silentNotifier) NotifyPaymentConfirmed(context.Context, models.PaymentMessage) error {
	return nil
}

type stubObjects struct {
	mu      sync.Mutex
	objects map[string]bool
}

func (s *stubObjects) Put(_ context.Context, localPath, folder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + filepath.Base(localPath)
	s.objects[u] = true
	return u, nil
}

func (s *stubObjects) Remove(_ context.Context, u string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, u)
	return nil
}

type testServer struct {
	router *gin.Engine
	bundle *handlers.HandlerBundle
	store  *repository.Store
	gw     *stubGateway
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Services.Create(ctx, &models.VisaService{
		ID: "svc-spain", Title: "Spain Visa", Slug: "spain-visa", BasePrice: 450, Currency: "SAR", Active: true, DisplayOrder: 0,
	}))
	require.NoError(t, store.Services.Create(ctx, &models.VisaService{
		ID: "svc-italy", Title: "Italy Visa", Slug: "italy-visa", BasePrice: 500, Currency: "SAR", Active: false, DisplayOrder: 1,
	}))

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	gw := &stubGateway{statuses: map[string]models.PaymentStatus{}}
	mem := application.NewMemoryStore()
	uploads := storage.NewAdapter(&stubObjects{objects: map[string]bool{}}, "visa-documents", 1<<20)
	catalogSvc := catalog.NewService(store.Services, "SAR")
	provider := identity.NewLocalProvider(store.Users)
	orch := application.New(application.Deps{
		Store:    store,
		Catalog:  catalogSvc,
		Identity: identity.NewResolver(provider),
		Uploads:  uploads,
		Gateway:  gw,
		Notifier: silentNotifier{},
		Sessions: mem,
		Pending:  mem,
	}, application.Options{
		Currency:     "SAR",
		APIBaseURL:   "https://api.example.com",
		PollInterval: time.Hour,
		PollTimeout:  2 * time.Hour,
	})
	t.Cleanup(orch.Close)

	hb := &handlers.HandlerBundle{
		Store:        store,
		Orchestrator: orch,
		Catalog:      catalogSvc,
		Admin:        admin.NewService(store, uploads),
		Identity:     provider,
		AdminCreds:   identity.AdminCredentials{Email: "ops@example.com", PasswordHash: string(hash)},
		Sessions:     session.NewManager("test-secret", time.Hour, session.NewMemoryDenylist()),
		Currency:     "SAR",
		UploadDir:    t.TempDir(),
	}
	r := gin.New()
	RegisterRoutes(r, hb, Options{AdminLoginPath: adminLoginPath, MaxRequestsPerMin: 10000})
	return &testServer{router: r, bundle: hb, store: store, gw: gw}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(t *testing.T, path, field, name string, fields map[string]string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write([]byte("scan"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

type outcomeBody struct {
	State   wizard.State `json:"state"`
	Account string       `json:"account"`
	Token   string       `json:"token"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func event(kind string, payload any) map[string]any {
	return map[string]any{"type": kind, "payload": payload}
}

func travelDate() string {
	return time.Now().AddDate(0, 2, 0).Format("2006-01-02")
}

// submitApplication walks a new applicant through the wizard and returns the
// session at the payment step.
func (ts *testServer) submitApplication(t *testing.T) outcomeBody {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/wizard/sessions", "", map[string]string{"service": "spain-visa"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[outcomeBody](t, w).State.SessionID
	base := "/api/wizard/sessions/" + id

	w = ts.do(t, http.MethodPost, base+"/events", "", event("update_details", map[string]string{"travelDate": travelDate()}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, base+"/events", "", event("update_traveller", map[string]any{
		"index": 0, "traveller": map[string]string{"firstName": "Sara", "lastName": "Ali"},
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, base+"/events", "", event("next", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, wizard.StepDocuments, decode[outcomeBody](t, w).State.Step)

	w = ts.upload(t, base+"/documents/passport", "file", "passport.jpg", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	doc := decode[outcomeBody](t, w).State.Documents[models.DocPassport]
	assert.NotEmpty(t, doc.URL)
	assert.Empty(t, doc.LocalPath)

	w = ts.do(t, http.MethodPost, base+"/events", "", event("next", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, base+"/events", "", event("submit_account", map[string]string{
		"email": "sara@example.com", "password": "secret1", "confirmPassword": "secret1", "phone": "0500000000",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[outcomeBody](t, w)
	require.Equal(t, wizard.StepPayment, out.State.Step)
	return out
}

func TestHealthAndCatalog(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/metrics", "", nil).Code)

	w := ts.do(t, http.MethodGet, "/api/services", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.VisaService](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "spain-visa", list[0].Slug)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/services/spain-visa", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/services/italy-visa", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/services/mars-visa", "", nil).Code)

	w = ts.do(t, http.MethodGet, "/api/legal", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.LegalSection](t, w), 3)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/legal/cookies", "", nil).Code)
}

func TestWizardSubmitAndPayOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	out := ts.submitApplication(t)
	require.NotEmpty(t, out.Token)
	assert.Equal(t, string(identity.Created), out.Account)
	base := "/api/wizard/sessions/" + out.State.SessionID
	orderID := out.State.Payment.OrderID
	require.NotEmpty(t, orderID)

	w := ts.do(t, http.MethodPost, base+"/events", "", event("start_payment", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decode[outcomeBody](t, w).State
	assert.Equal(t, wizard.PaymentChecking, st.Payment.Status)
	assert.Equal(t, "https://pay.example.com/"+orderID, st.Payment.PaymentURL)

	ts.gw.set(orderID, models.PaymentCompleted)
	w = ts.do(t, http.MethodGet, "/api/payments/callback?"+url.Values{"order_id": {orderID}}.Encode(), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cb := decode[application.CallbackOutcome](t, w)
	assert.Equal(t, models.PaymentCompleted, cb.Status)
	assert.Equal(t, out.State.SessionID, cb.SessionID)

	w = ts.do(t, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, wizard.PaymentCompleted, decode[outcomeBody](t, w).State.Payment.Status)

	w = ts.do(t, http.MethodGet, "/api/client/applications", out.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	apps := decode[[]models.Application](t, w)
	require.Len(t, apps, 1)
	assert.True(t, apps[0].Paid)
	assert.Equal(t, out.State.ReferenceID, apps[0].ReferenceID)

	w = ts.do(t, http.MethodGet, "/api/client/invoices", out.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	invoices := decode[[]models.Invoice](t, w)
	require.Len(t, invoices, 1)
	assert.Equal(t, models.InvoicePaid, invoices[0].Status)

	w = ts.do(t, http.MethodGet, "/api/client/applications/"+apps[0].ID, out.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/client/applications/"+apps[0].ID+"/pay", out.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWizardErrors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/wizard/sessions", "", map[string]string{"service": "italy-visa"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/wizard/sessions", "", map[string]string{"service": "spain-visa"})
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/wizard/sessions/" + decode[outcomeBody](t, w).State.SessionID

	w = ts.do(t, http.MethodPost, base+"/events", "", event("next", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["field"])

	w = ts.do(t, http.MethodPost, base+"/events", "", event("teleport", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, base+"/events", "", event("start_payment", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.upload(t, base+"/documents/passport", "file", "passport.jpg", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.upload(t, base+"/documents/selfie", "file", "selfie.jpg", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/wizard/sessions/missing", "", nil).Code)
}

func TestSignedInApplicantSkipsAccountCreation(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	u, err := identity.NewLocalProvider(ts.store.Users).SignUp(ctx, identity.SignUpInput{
		Name: "Omar", Email: "omar@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	token, _, err := ts.bundle.Sessions.IssueForUser(u)
	require.NoError(t, err)

	w := ts.do(t, http.MethodPost, "/api/wizard/sessions", token, map[string]string{"service": "spain-visa"})
	require.Equal(t, http.StatusCreated, w.Code)
	st := decode[outcomeBody](t, w).State
	assert.Equal(t, u.ID, st.UserID)
	assert.Equal(t, "omar@example.com", st.Applicant.Email)
}

func TestAuthLoginLogout(t *testing.T) {
	ts := newTestServer(t)
	_, err := identity.NewLocalProvider(ts.store.Users).SignUp(context.Background(), identity.SignUpInput{
		Name: "Sara", Email: "sara@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "sara@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "sara@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[map[string]any](t, w)["token"].(string)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/client/invoices", token, nil).Code)
}

func adminToken(t *testing.T, ts *testServer) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, adminLoginPath, "", map[string]string{"email": "ops@example.com", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["token"].(string)
}

func TestAdminAccess(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, adminLoginPath, "", map[string]string{"email": "ops@example.com", "password": "guess-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/admin/applications", "", nil).Code)

	out := ts.submitApplication(t)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/admin/applications", out.Token, nil).Code)

	token := adminToken(t, ts)
	w = ts.do(t, http.MethodGet, "/api/admin/applications?paid=false", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	apps := decode[[]models.Application](t, w)
	require.Len(t, apps, 1)

	w = ts.do(t, http.MethodPut, "/api/admin/applications/"+apps[0].ID+"/status", token, map[string]string{"status": models.StatusDocumentReview, "note": "Checking scans"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPut, "/api/admin/applications/"+apps[0].ID+"/status", token, map[string]string{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/applications/"+apps[0].ID+"/statuses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.StatusEntry](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, "ops@example.com", history[1].Actor)

	w = ts.do(t, http.MethodGet, "/api/admin/applications/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	w = ts.do(t, http.MethodPost, "/api/admin/applications/bulk/delete", token, map[string]any{"ids": []string{apps[0].ID, "missing"}})
	require.Equal(t, http.StatusMultiStatus, w.Code)
	res := decode[admin.BulkResult](t, w)
	assert.Equal(t, []string{apps[0].ID}, res.Succeeded)
	require.Len(t, res.Failed, 1)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/admin/applications/"+apps[0].ID, token, nil).Code)
}

func TestAdminInvoicesAndServices(t *testing.T) {
	ts := newTestServer(t)
	token := adminToken(t, ts)

	w := ts.do(t, http.MethodPost, "/api/admin/invoices", token, map[string]any{"clientId": "user-1", "amount": 120, "serviceDescription": "Courier"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[models.Invoice](t, w)
	assert.Equal(t, "SAR", inv.Currency)

	w = ts.do(t, http.MethodPost, "/api/admin/invoices", token, map[string]any{"clientId": "user-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/api/admin/invoices/"+inv.ID, token, map[string]any{"status": models.InvoicePaid})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.InvoicePaid, decode[models.Invoice](t, w).Status)

	w = ts.do(t, http.MethodPost, "/api/admin/invoices/bulk/status", token, map[string]any{"ids": []string{inv.ID}, "status": models.InvoiceCancelled})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/admin/services", token, map[string]any{"title": "France Visa", "basePrice": 300, "active": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.VisaService](t, w)
	assert.Equal(t, "france-visa", created.Slug)

	w = ts.do(t, http.MethodPatch, "/api/admin/services/svc-italy/active", token, map[string]any{"active": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/services/italy-visa", "", nil).Code)

	w = ts.do(t, http.MethodPost, "/api/admin/services/reorder", token, map[string]int{"oldIndex": 2, "newIndex": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode[[]models.VisaService](t, w)
	require.Len(t, order, 3)
	assert.Equal(t, "france-visa", order[0].Slug)

	w = ts.do(t, http.MethodPost, "/api/admin/services/reorder", token, map[string]int{"oldIndex": 9, "newIndex": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminClientDocuments(t *testing.T) {
	ts := newTestServer(t)
	out := ts.submitApplication(t)
	token := adminToken(t, ts)

	w := ts.upload(t, "/api/admin/documents", "file", "visa.pdf", map[string]string{
		"userId": out.State.UserID, "applicationId": out.State.ApplicationID, "name": "Issued visa",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode[models.ClientDocument](t, w)

	w = ts.do(t, http.MethodGet, "/api/client/documents", out.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ClientDocument](t, w), 1)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/admin/documents/"+doc.ID, token, nil).Code)
	w = ts.do(t, http.MethodGet, "/api/client/documents", out.Token, nil)
	assert.Empty(t, decode[[]models.ClientDocument](t, w))
}

func TestPaymentWebhook(t *testing.T) {
	ts := newTestServer(t)
	out := ts.submitApplication(t)
	base := "/api/wizard/sessions/" + out.State.SessionID
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/events", "", event("start_payment", nil)).Code)
	orderID := out.State.Payment.OrderID

	w := ts.do(t, http.MethodPost, "/api/payments/webhook", "", map[string]any{"type": "ping"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["ignored"])

	w = ts.do(t, http.MethodPost, "/api/payments/webhook", "", map[string]any{"order_id": "VISA-unknown"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["ignored"])

	ts.gw.set(orderID, models.PaymentCompleted)
	w = ts.do(t, http.MethodPost, "/api/payments/webhook", "", map[string]any{
		"type": "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{"client_reference_id": orderID}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.PaymentCompleted, decode[application.CallbackOutcome](t, w).Status)

	app, err := ts.store.Applications.GetByID(context.Background(), out.State.ApplicationID)
	require.NoError(t, err)
	assert.True(t, app.Paid)
}

func TestPaymentCallbackRedirects(t *testing.T) {
	ts := newTestServer(t)
	ts.bundle.PublicBaseURL = "https://visapoint.example.com/"
	out := ts.submitApplication(t)
	base := "/api/wizard/sessions/" + out.State.SessionID
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/events", "", event("start_payment", nil)).Code)
	orderID := out.State.Payment.OrderID

	ts.gw.set(orderID, models.PaymentFailed)
	w := ts.do(t, http.MethodGet, "/api/payments/callback?order_id="+orderID, "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/payment/result", loc.Path)
	assert.Equal(t, string(models.PaymentFailed), loc.Query().Get("status"))
	assert.Equal(t, out.State.SessionID, loc.Query().Get("session"))

	w = ts.do(t, http.MethodGet, "/api/payments/callback?order_id=VISA-unknown", "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "status=error")
}

func TestResumePaymentFromDashboard(t *testing.T) {
	ts := newTestServer(t)
	out := ts.submitApplication(t)

	w := ts.do(t, http.MethodPost, "/api/client/applications/"+out.State.ApplicationID+"/pay", out.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resumed := decode[outcomeBody](t, w).State
	assert.Equal(t, wizard.StepPayment, resumed.Step)
	assert.NotEqual(t, out.State.Payment.OrderID, resumed.Payment.OrderID)
	assert.NotEqual(t, out.State.SessionID, resumed.SessionID)

	other, err := identity.NewLocalProvider(ts.store.Users).SignUp(context.Background(), identity.SignUpInput{
		Name: "Omar", Email: "omar@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	token, _, err := ts.bundle.Sessions.IssueForUser(other)
	require.NoError(t, err)
	w = ts.do(t, http.MethodPost, "/api/client/applications/"+out.State.ApplicationID+"/pay", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
