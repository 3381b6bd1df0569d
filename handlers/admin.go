package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"visapoint/middleware"
	"visapoint/models"
	"visapoint/services/admin"
	"visapoint/utils"
)

type bulkIDsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids" binding:"required"`
	Status string   `json:"status" binding:"required"`
}

func applicationFilter(c *gin.Context) models.ApplicationFilter {
	f := models.ApplicationFilter{
		Status:    c.Query("status"),
		Search:    strings.TrimSpace(c.Query("search")),
		UserID:    c.Query("userId"),
		SortBy:    c.Query("sort"),
		Ascending: strings.EqualFold(c.Query("order"), "asc"),
		Limit:     cast.ToInt64(c.Query("limit")),
		Offset:    cast.ToInt64(c.Query("offset")),
	}
	if raw := c.Query("paid"); raw != "" {
		if paid, err := cast.ToBoolE(raw); err == nil {
			f.Paid = &paid
		}
	}
	return f
}

func actor(c *gin.Context) string {
	if s, ok := middleware.CurrentSession(c); ok {
		return s.Email
	}
	return "admin"
}

// bulkStatus is 200 when every id succeeded and 207 otherwise.
func bulkStatus(res admin.BulkResult) int {
	if res.OK() {
		return http.StatusOK
	}
	return http.StatusMultiStatus
}

// AdminListApplications handles GET /api/admin/applications.
func (h *HandlerBundle) AdminListApplications(c *gin.Context) {
	apps, err := h.Admin.ListApplications(c.Request.Context(), applicationFilter(c))
	if err != nil {
		respondError(c, "Failed to fetch applications", err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	c.JSON(http.StatusOK, apps)
}

// AdminGetApplication handles GET /api/admin/applications/:id.
func (h *HandlerBundle) AdminGetApplication(c *gin.Context) {
	detail, err := h.Admin.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Application not found", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// AdminStatusHistory handles GET /api/admin/applications/:id/statuses.
func (h *HandlerBundle) AdminStatusHistory(c *gin.Context) {
	history, err := h.Admin.StatusHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch status history", err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// AdminUpdateStatus handles PUT /api/admin/applications/:id/status.
func (h *HandlerBundle) AdminUpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := h.Admin.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note, actor(c)); err != nil {
		respondError(c, "Failed to update status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}

// AdminBulkStatus handles POST /api/admin/applications/bulk/status.
func (h *HandlerBundle) AdminBulkStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	res, err := h.Admin.BulkUpdateStatus(c.Request.Context(), req.IDs, req.Status, actor(c))
	if err != nil {
		respondError(c, "Bulk status update failed", err)
		return
	}
	c.JSON(bulkStatus(res), res)
}

// AdminDeleteApplication handles DELETE /api/admin/applications/:id.
func (h *HandlerBundle) AdminDeleteApplication(c *gin.Context) {
	if err := h.Admin.DeleteApplication(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Failed to delete application", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application deleted"})
}

// AdminBulkDelete handles POST /api/admin/applications/bulk/delete.
func (h *HandlerBundle) AdminBulkDelete(c *gin.Context) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	res, err := h.Admin.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, "Bulk delete failed", err)
		return
	}
	c.JSON(bulkStatus(res), res)
}

// AdminExportApplications handles GET /api/admin/applications/export.
func (h *HandlerBundle) AdminExportApplications(c *gin.Context) {
	name := fmt.Sprintf("applications-%s.xlsx", time.Now().Format("20060102-1504"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	n, err := h.Admin.ExportApplications(c.Request.Context(), applicationFilter(c), c.Writer)
	if err != nil {
		getLogger(c).Error("Export failed", zap.Error(err))
		if !c.Writer.Written() {
			c.Header("Content-Disposition", "")
			c.Header("Content-Type", "")
			respondError(c, "Export failed", err)
		}
		return
	}
	getLogger(c).Info("Applications exported", zap.Int("rows", n))
}

// AdminListInvoices handles GET /api/admin/invoices.
func (h *HandlerBundle) AdminListInvoices(c *gin.Context) {
	list, err := h.Admin.ListInvoices(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, "Failed to fetch invoices", err)
		return
	}
	if list == nil {
		list = []models.Invoice{}
	}
	c.JSON(http.StatusOK, list)
}

// AdminCreateInvoice handles POST /api/admin/invoices.
func (h *HandlerBundle) AdminCreateInvoice(c *gin.Context) {
	var in admin.InvoiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid invoice", err.Error())
		return
	}
	inv, err := h.Admin.CreateInvoice(c.Request.Context(), in, h.Currency)
	if err != nil {
		respondError(c, "Failed to create invoice", err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// AdminUpdateInvoice handles PUT /api/admin/invoices/:id. Fields left out
// keep their stored values.
func (h *HandlerBundle) AdminUpdateInvoice(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid invoice", err.Error())
		return
	}
	var in admin.InvoiceInput
	if err := json.Unmarshal(raw, &in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid invoice", err.Error())
		return
	}
	inv, err := h.Admin.UpdateInvoice(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, "Failed to update invoice", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// AdminBulkInvoiceStatus handles POST /api/admin/invoices/bulk/status.
func (h *HandlerBundle) AdminBulkInvoiceStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	res, err := h.Admin.BulkInvoiceStatus(c.Request.Context(), req.IDs, req.Status)
	if err != nil {
		respondError(c, "Bulk invoice update failed", err)
		return
	}
	c.JSON(bulkStatus(res), res)
}

// AdminBulkDeleteInvoices handles POST /api/admin/invoices/bulk/delete.
func (h *HandlerBundle) AdminBulkDeleteInvoices(c *gin.Context) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	res, err := h.Admin.BulkDeleteInvoices(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, "Bulk invoice delete failed", err)
		return
	}
	c.JSON(bulkStatus(res), res)
}

// AdminUploadDocument handles POST /api/admin/documents (multipart: file,
// userId, applicationId, name).
func (h *HandlerBundle) AdminUploadDocument(c *gin.Context) {
	userID := c.PostForm("userId")
	if userID == "" {
		utils.JSONFieldError(c, "userId", "Client is required")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONFieldError(c, "file", "File not provided")
		return
	}
	localPath, err := h.saveUpload(fileHeader.Filename)
	if err == nil {
		err = c.SaveUploadedFile(fileHeader, localPath)
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save file", err.Error())
		return
	}
	defer os.Remove(localPath)

	name := c.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}
	doc, err := h.Admin.UploadClientDocument(c.Request.Context(), models.ClientDocument{
		UserID:        userID,
		ApplicationID: c.PostForm("applicationId"),
		Name:          name,
		UploadedBy:    actor(c),
	}, localPath)
	if err != nil {
		respondError(c, "Failed to upload document", err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// AdminDeleteDocument handles DELETE /api/admin/documents/:id.
func (h *HandlerBundle) AdminDeleteDocument(c *gin.Context) {
	if err := h.Admin.DeleteClientDocument(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Failed to delete document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// AdminRunReconcile handles POST /api/admin/payments/reconcile.
func (h *HandlerBundle) AdminRunReconcile(c *gin.Context) {
	report, err := h.Orchestrator.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, "Reconcile failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetLegalSections handles GET /api/legal.
func (h *HandlerBundle) GetLegalSections(c *gin.Context) {
	c.JSON(http.StatusOK, admin.LegalSections())
}

// GetLegalSection handles GET /api/legal/:id.
func (h *HandlerBundle) GetLegalSection(c *gin.Context) {
	s, ok := admin.LegalSection(c.Param("id"))
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Section not found", "")
		return
	}
	c.JSON(http.StatusOK, s)
}
