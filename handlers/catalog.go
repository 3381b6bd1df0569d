package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"visapoint/models"
	"visapoint/services/catalog"
	"visapoint/utils"
)

// ListServices handles GET /api/services.
func (h *HandlerBundle) ListServices(c *gin.Context) {
	list, err := h.Catalog.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to fetch services", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetService handles GET /api/services/:slug. Inactive services are hidden.
func (h *HandlerBundle) GetService(c *gin.Context) {
	svc, err := h.Catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, "Service not found", err)
		return
	}
	if !svc.Active {
		utils.JSONError(c, http.StatusNotFound, "Service not found", "")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// AdminListServices handles GET /api/admin/services, inactive ones included.
func (h *HandlerBundle) AdminListServices(c *gin.Context) {
	list, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to fetch services", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateService handles POST /api/admin/services.
func (h *HandlerBundle) CreateService(c *gin.Context) {
	var svc models.VisaService
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid service", err.Error())
		return
	}
	svc.ID = ""
	if err := h.Catalog.Create(c.Request.Context(), &svc); err != nil {
		respondError(c, "Failed to create service", err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// UpdateService handles PUT /api/admin/services/:id.
func (h *HandlerBundle) UpdateService(c *gin.Context) {
	var svc models.VisaService
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid service", err.Error())
		return
	}
	svc.ID = c.Param("id")
	if err := h.Catalog.Update(c.Request.Context(), &svc); err != nil {
		respondError(c, "Failed to update service", err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DeleteService handles DELETE /api/admin/services/:id.
func (h *HandlerBundle) DeleteService(c *gin.Context) {
	if err := h.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Failed to delete service", err)
		return
	}
	getLogger(c).Info("Service deleted", zap.String("serviceId", c.Param("id")))
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}

// ToggleService handles PATCH /api/admin/services/:id/active.
func (h *HandlerBundle) ToggleService(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := h.Catalog.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		respondError(c, "Failed to update service", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "active": *req.Active})
}

// ReorderServices handles POST /api/admin/services/reorder.
func (h *HandlerBundle) ReorderServices(c *gin.Context) {
	var cmd catalog.ReorderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	list, err := h.Catalog.Reorder(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, "Failed to reorder services", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
