package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// ListEquipment handles GET /api/equipment
func (h *Handler) ListEquipment(c *gin.Context) {
	filter := ports.EquipmentFilter{
		Type:   models.EquipmentType(c.Query("type")),
		Status: models.EquipmentStatus(c.Query("status")),
	}

	items, err := h.service.ListEquipment(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// EquipmentSummary handles GET /api/equipment/summary
func (h *Handler) EquipmentSummary(c *gin.Context) {
	summary, err := h.service.EquipmentSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetEquipment handles GET /api/equipment/:id
func (h *Handler) GetEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	equipment, err := h.service.GetEquipment(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, equipment)
}

// CreateEquipment handles POST /api/equipment
func (h *Handler) CreateEquipment(c *gin.Context) {
	var req EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	equipment, err := h.service.CreateEquipment(c.Request.Context(), actorFrom(c), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, equipment)
}

// UpdateEquipment handles PUT /api/equipment/:id
func (h *Handler) UpdateEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req EquipmentPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	equipment, err := h.service.UpdateEquipment(c.Request.Context(), actorFrom(c), id, models.EquipmentPatch(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, equipment)
}

// DeleteEquipment handles DELETE /api/equipment/:id
func (h *Handler) DeleteEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteEquipment(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
