package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visapoint/database"
	"visapoint/services/admin"
	"visapoint/services/application"
	"visapoint/services/identity"
	"visapoint/services/wizard"
	"visapoint/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWebhookOrderID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"midtrans", `{"order_id":"VISA-1","transaction_status":"settlement"}`, "VISA-1"},
		{"stripe checkout", `{"type":"checkout.session.completed","data":{"object":{"client_reference_id":"VISA-2"}}}`, "VISA-2"},
		{"stripe intent", `{"data":{"object":{"metadata":{"order_id":"VISA-3"}}}}`, "VISA-3"},
		{"paypal", `{"resource":{"purchase_units":[{"reference_id":"VISA-4"}]}}`, "VISA-4"},
		{"no order", `{"type":"ping"}`, ""},
		{"not json", `order_id=VISA-5`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, webhookOrderID([]byte(tt.body)))
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&wizard.ValidationError{Field: "travelDate", Message: "travel date is required"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", wizard.ErrInvalidTransition), http.StatusConflict},
		{application.ErrSessionNotFound, http.StatusNotFound},
		{database.ErrNotFound, http.StatusNotFound},
		{application.ErrForbidden, http.StatusForbidden},
		{application.ErrAlreadyPaid, http.StatusConflict},
		{identity.ErrInvalidCredentials, http.StatusUnauthorized},
		{identity.ErrEmailExistsWrongPassword, http.StatusConflict},
		{admin.ErrNoIDs, http.StatusBadRequest},
		{errors.New("mongo down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		respondError(c, "failed", tt.err)
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
	}
}

func TestRespondErrorCarriesField(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	respondError(c, "Event rejected", &wizard.ValidationError{Field: "travellers[0].firstName", Message: "first name is required"})

	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "travellers[0].firstName", body.Field)
	assert.Equal(t, "first name is required", body.Message)
}
