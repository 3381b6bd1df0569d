package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visapoint/models"
	"visapoint/services/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(mgr *session.Manager) *gin.Engine {
	r := gin.New()
	r.GET("/me", SessionAuth(mgr), func(c *gin.Context) {
		s, _ := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"userId": s.UserID})
	})
	r.GET("/admin", SessionAuth(mgr), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/maybe", OptionalSession(mgr), func(c *gin.Context) {
		_, ok := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"signedIn": ok})
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAuth(t *testing.T) {
	mgr := session.NewManager("secret", time.Hour, session.NewMemoryDenylist())
	r := newAuthRouter(mgr)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)

	token, s, err := mgr.IssueForUser(&models.User{ID: "u1", Email: "sara@example.com"})
	require.NoError(t, err)
	w := do(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"u1"`)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", token).Code)

	require.NoError(t, mgr.Revoke(context.Background(), s))
	w = do(r, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session has ended")
}

func TestRequireAdmin(t *testing.T) {
	mgr := session.NewManager("secret", time.Hour, nil)
	r := newAuthRouter(mgr)

	token, _, err := mgr.Issue("admin", "ops@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", token).Code)
}

func TestOptionalSession(t *testing.T) {
	mgr := session.NewManager("secret", time.Hour, nil)
	r := newAuthRouter(mgr)

	assert.Contains(t, do(r, "/maybe", "").Body.String(), `"signedIn":false`)
	assert.Contains(t, do(r, "/maybe", "garbage").Body.String(), `"signedIn":false`)

	token, _, err := mgr.IssueForUser(&models.User{ID: "u1"})
	require.NoError(t, err)
	assert.Contains(t, do(r, "/maybe", token).Body.String(), `"signedIn":true`)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7"))
	assert.Equal(t, http.StatusOK, send("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
}

func TestGetClientIP(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", getClientIP(c))

	c.Request.Header.Set("X-Real-IP", "192.0.2.20")
	assert.Equal(t, "192.0.2.20", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "192.0.2.30, 10.0.0.1")
	assert.Equal(t, "192.0.2.30", getClientIP(c))
}

func TestMetricsMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
