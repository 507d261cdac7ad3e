package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// AlreadyResolvedHeader is set when a resolve request hits a resolved alert
const AlreadyResolvedHeader = "X-Already-Resolved"

// ListAlerts handles GET /api/alerts
func (h *Handler) ListAlerts(c *gin.Context) {
	filter := ports.AlertFilter{
		Status:   models.AlertStatus(c.Query("status")),
		Severity: models.Severity(c.Query("severity")),
	}

	alerts, err := h.service.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// GetAlert handles GET /api/alerts/:id
func (h *Handler) GetAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	alert, err := h.service.GetAlert(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// CreateAlert handles POST /api/alerts
func (h *Handler) CreateAlert(c *gin.Context) {
	var req AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	alert, err := h.service.CreateAlert(c.Request.Context(), actorFrom(c), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// UpdateAlert handles PUT /api/alerts/:id
func (h *Handler) UpdateAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req AlertPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	alert, err := h.service.UpdateAlert(c.Request.Context(), actorFrom(c), id, models.AlertPatch(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// bindAction reads the optional notes body of resolve and ignore
func bindAction(c *gin.Context) (AlertActionRequest, bool) {
	var req AlertActionRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return req, false
	}
	return req, true
}

// ResolveAlert handles POST /api/alerts/:id/resolve
func (h *Handler) ResolveAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindAction(c)
	if !ok {
		return
	}

	alert, already, err := h.service.ResolveAlert(c.Request.Context(), actorFrom(c), id, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	if already {
		c.Header(AlreadyResolvedHeader, "true")
	}
	c.JSON(http.StatusOK, alert)
}

// IgnoreAlert handles POST /api/alerts/:id/ignore
func (h *Handler) IgnoreAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindAction(c)
	if !ok {
		return
	}

	alert, err := h.service.IgnoreAlert(c.Request.Context(), actorFrom(c), id, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}
