package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"visapoint/services/session"
	"visapoint/utils"
)

const sessionKey = "session"

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// SessionAuth requires a valid, unrevoked bearer token and stores the
// session on the context.
func SessionAuth(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing or invalid Authorization header"})
			return
		}
		s, err := mgr.Parse(c.Request.Context(), token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, session.ErrRevoked) {
				msg = "Session has ended, please sign in again"
			}
			zap.L().Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: msg})
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// OptionalSession attaches a session when a valid token is present and lets
// anonymous requests through.
func OptionalSession(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if s, err := mgr.Parse(c.Request.Context(), token); err == nil {
				c.Set(sessionKey, s)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after SessionAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok || !s.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Unauthorized admin access"})
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session stored by SessionAuth or OptionalSession.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok && s != nil
}
