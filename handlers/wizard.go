package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"visapoint/middleware"
	"visapoint/models"
	"visapoint/services/application"
	"visapoint/services/wizard"
	"visapoint/utils"
)

// maxDocumentSize caps a single wizard upload.
const maxDocumentSize = 10 << 20

type startSessionRequest struct {
	Service  string `json:"service" binding:"required"`
	Language string `json:"language"`
}

type eventRequest struct {
	Type    string          `json:"type" binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

// StartWizardSession handles POST /api/wizard/sessions.
func (h *HandlerBundle) StartWizardSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	var userID, email string
	if s, ok := middleware.CurrentSession(c); ok && !s.IsAdmin() {
		userID, email = s.UserID, s.Email
	}

	out, err := h.Orchestrator.Start(c.Request.Context(), req.Service, req.Language, userID, email)
	if err != nil {
		respondError(c, "Could not start application", err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// GetWizardSession handles GET /api/wizard/sessions/:id.
func (h *HandlerBundle) GetWizardSession(c *gin.Context) {
	st, err := h.Orchestrator.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Session not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": st})
}

// DispatchWizardEvent handles POST /api/wizard/sessions/:id/events.
func (h *HandlerBundle) DispatchWizardEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	ev, err := wizard.ParseEvent(req.Type, req.Payload)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid event", err.Error())
		return
	}
	if submit, ok := ev.(wizard.SubmitAccount); ok {
		if s, signedIn := middleware.CurrentSession(c); signedIn && !s.IsAdmin() {
			submit.UserID, submit.UserEmail = s.UserID, s.Email
			ev = submit
		}
	}

	out, err := h.Orchestrator.Dispatch(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		respondError(c, "Event rejected", err)
		return
	}
	h.respondOutcome(c, out)
}

// AttachWizardDocument handles POST /api/wizard/sessions/:id/documents/:kind.
func (h *HandlerBundle) AttachWizardDocument(c *gin.Context) {
	kind := c.Param("kind")
	if !models.IsValidDocumentKind(kind) {
		utils.JSONFieldError(c, "kind", "Unknown document kind")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONFieldError(c, kind, "File not provided")
		return
	}
	if fileHeader.Size > maxDocumentSize {
		utils.JSONFieldError(c, kind, "File is too large")
		return
	}

	localPath, err := h.saveUpload(fileHeader.Filename)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save file", err.Error())
		return
	}
	if err := c.SaveUploadedFile(fileHeader, localPath); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save file", err.Error())
		return
	}

	out, err := h.Orchestrator.AttachDocument(c.Request.Context(), c.Param("id"), models.UploadedFile{
		Kind:        kind,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		LocalPath:   localPath,
	})
	if err != nil {
		_ = os.Remove(localPath)
		respondError(c, "Could not attach document", err)
		return
	}
	h.respondOutcome(c, out)
}

// RemoveWizardDocument handles DELETE /api/wizard/sessions/:id/documents/:kind.
func (h *HandlerBundle) RemoveWizardDocument(c *gin.Context) {
	out, err := h.Orchestrator.RemoveDocument(c.Request.Context(), c.Param("id"), c.Param("kind"))
	if err != nil {
		respondError(c, "Could not remove document", err)
		return
	}
	h.respondOutcome(c, out)
}

// CheckWizardPayment handles POST /api/wizard/sessions/:id/payment/check.
func (h *HandlerBundle) CheckWizardPayment(c *gin.Context) {
	out, err := h.Orchestrator.CheckPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Could not check payment", err)
		return
	}
	h.respondOutcome(c, out)
}

// StopWizardPaymentPoll handles DELETE /api/wizard/sessions/:id/payment/poll,
// sent when the payment dialog is closed.
func (h *HandlerBundle) StopWizardPaymentPoll(c *gin.Context) {
	out, err := h.Orchestrator.Dispatch(c.Request.Context(), c.Param("id"), wizard.StopPolling{})
	if err != nil {
		respondError(c, "Could not stop payment check", err)
		return
	}
	h.respondOutcome(c, out)
}

// respondOutcome writes the session view and, when the call signed the
// applicant in, a bearer token for the new session.
func (h *HandlerBundle) respondOutcome(c *gin.Context, out *application.Outcome) {
	body := gin.H{"state": out.State}
	if out.Account != "" {
		body["account"] = out.Account
	}
	if out.User != nil && h.Sessions != nil {
		token, _, err := h.Sessions.IssueForUser(out.User)
		if err != nil {
			getLogger(c).Error("Failed to issue token after submission", zap.String("userID", out.User.ID), zap.Error(err))
		} else {
			body["token"] = token
			body["user"] = out.User
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *HandlerBundle) saveUpload(name string) (string, error) {
	dir := h.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, uuid.New().String()+filepath.Ext(filepath.Base(name))), nil
}
