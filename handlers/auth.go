package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"visapoint/middleware"
	"visapoint/models"
	"visapoint/utils"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login for applicants.
func (h *HandlerBundle) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	user, err := h.Identity.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "Login failed", err)
		return
	}
	token, s, err := h.Sessions.IssueForUser(user)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Login failed", err.Error())
		return
	}
	getLogger(c).Info("User logged in", zap.String("userID", user.ID))
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "expiresAt": s.ExpiresAt})
}

// AdminLogin handles POST on the configured admin login path.
func (h *HandlerBundle) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := h.AdminCreds.Verify(req.Email, req.Password); err != nil {
		getLogger(c).Warn("Admin login rejected", zap.String("email", req.Email))
		respondError(c, "Login failed", err)
		return
	}
	token, s, err := h.Sessions.Issue("admin", h.AdminCreds.Email, models.RoleAdmin)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Login failed", err.Error())
		return
	}
	getLogger(c).Info("Admin logged in")
	c.JSON(http.StatusOK, gin.H{"token": token, "role": s.Role, "expiresAt": s.ExpiresAt})
}

// Logout handles POST /api/auth/logout. The token stays revoked until it
// would have expired.
func (h *HandlerBundle) Logout(c *gin.Context) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not signed in", "")
		return
	}
	if err := h.Sessions.Revoke(c.Request.Context(), s); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Logout failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /api/auth/me.
func (h *HandlerBundle) Me(c *gin.Context) {
	s, _ := middleware.CurrentSession(c)
	if s.IsAdmin() {
		c.JSON(http.StatusOK, gin.H{"session": s})
		return
	}
	user, err := h.Identity.GetUser(c.Request.Context(), s.UserID)
	if err != nil {
		respondError(c, "User not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s, "user": user})
}
