package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"visapoint/middleware"
	"visapoint/utils"
)

// getLogger tags log lines with the route and, for signed-in callers, the
// account behind the request.
func getLogger(c *gin.Context) *zap.Logger {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	logger := utils.GetLogger().With(zap.String("route", route))
	if s, ok := middleware.CurrentSession(c); ok {
		logger = logger.With(zap.String("userID", s.UserID), zap.String("role", s.Role))
	}
	return logger
}
