package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visapoint/middleware"
	"visapoint/models"
)

// ListMyApplications handles GET /api/client/applications.
func (h *HandlerBundle) ListMyApplications(c *gin.Context) {
	s, _ := middleware.CurrentSession(c)
	apps, err := h.Store.Applications.ListByUser(c.Request.Context(), s.UserID)
	if err != nil {
		respondError(c, "Failed to fetch applications", err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	c.JSON(http.StatusOK, apps)
}

// GetMyApplication handles GET /api/client/applications/:id with its status history.
func (h *HandlerBundle) GetMyApplication(c *gin.Context) {
	s, _ := middleware.CurrentSession(c)
	app, err := h.Store.Applications.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || app.UserID != s.UserID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}
	history, err := h.Store.Statuses.ListByApplication(c.Request.Context(), app.ID)
	if err != nil {
		respondError(c, "Failed to fetch status history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app, "history": history})
}

// ListMyInvoices handles GET /api/client/invoices.
func (h *HandlerBundle) ListMyInvoices(c *gin.Context) {
	s, _ := middleware.CurrentSession(c)
	invoices, err := h.Store.Invoices.ListByClient(c.Request.Context(), s.UserID)
	if err != nil {
		respondError(c, "Failed to fetch invoices", err)
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

// ListMyDocuments handles GET /api/client/documents.
func (h *HandlerBundle) ListMyDocuments(c *gin.Context) {
	s, _ := middleware.CurrentSession(c)
	docs, err := h.Store.Documents.ListByUser(c.Request.Context(), s.UserID)
	if err != nil {
		respondError(c, "Failed to fetch documents", err)
		return
	}
	if docs == nil {
		docs = []models.ClientDocument{}
	}
	c.JSON(http.StatusOK, docs)
}

// PayApplication handles POST /api/client/applications/:id/pay. It opens a
// wizard session parked on the payment step with a fresh order id.
func (h *HandlerBundle) PayApplication(c *gin.Context) {
	s, _ := middleware.CurrentSession(c)
	out, err := h.Orchestrator.ResumePayment(c.Request.Context(), s.UserID, c.Param("id"))
	if err != nil {
		respondError(c, "Could not resume payment", err)
		return
	}
	c.JSON(http.StatusOK, out)
}
