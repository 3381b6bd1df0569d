package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx JSON reply. Field names the
// offending input for validation failures so the client can highlight it.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler turns panics and errors left on the context by c.Error into
// a 500 ErrorResponse when the handler has not written a reply itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().Error("Panic while serving request",
					zap.Any("panic", r), zap.String("method", c.Request.Method), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "Something went wrong on our side. Please try again later.",
				})
			}
		}()
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			JSONError(c, http.StatusInternalServerError, "Internal Server Error", c.Errors.Last().Error())
		}
	}
}

// JSONError writes an ErrorResponse; server-side failures log at error
// level and client mistakes at warn.
func JSONError(c *gin.Context, status int, message string, details string) {
	fields := []zap.Field{zap.Int("status", status), zap.String("details", details), zap.String("path", c.Request.URL.Path)}
	if status >= http.StatusInternalServerError {
		GetLogger().Error(message, fields...)
	} else {
		GetLogger().Warn(message, fields...)
	}
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// JSONFieldError reports a 400 against a single input field.
func JSONFieldError(c *gin.Context, field, message string) {
	GetLogger().Debug("Rejected input", zap.String("field", field), zap.String("message", message))
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: message, Field: field})
}
