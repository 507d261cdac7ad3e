package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// ListPermits handles GET /api/permits
func (h *Handler) ListPermits(c *gin.Context) {
	filter := ports.PermitFilter{Status: models.PermitStatus(c.Query("status"))}

	permits, err := h.service.ListPermits(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, permits)
}

// GetPermit handles GET /api/permits/:id
func (h *Handler) GetPermit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	permit, err := h.service.GetPermit(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, permit)
}

// CreatePermit handles POST /api/permits
func (h *Handler) CreatePermit(c *gin.Context) {
	var req PermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	permit, err := h.service.CreatePermit(c.Request.Context(), actorFrom(c), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, permit)
}

// UpdatePermit handles PUT /api/permits/:id, including workflow transitions
func (h *Handler) UpdatePermit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req PermitPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	permit, err := h.service.UpdatePermit(c.Request.Context(), actorFrom(c), id, models.PermitPatch(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, permit)
}
