package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// ListActivityLogs handles GET /api/logs
func (h *Handler) ListActivityLogs(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	logs, err := h.service.ListActivityLogs(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// RecordActivity handles POST /api/logs
func (h *Handler) RecordActivity(c *gin.Context) {
	var req ActivityLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	userID := actorFrom(c).UserID
	entry := &models.ActivityLog{
		Action:      req.Action,
		Description: req.Description,
		UserID:      &userID,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Severity:    req.Severity,
	}

	recorded, err := h.service.RecordActivity(c.Request.Context(), entry)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recorded)
}

// ListEnergyReadings handles GET /api/energy/readings
func (h *Handler) ListEnergyReadings(c *gin.Context) {
	equipmentID, ok := queryInt(c, "equipmentId")
	if !ok {
		return
	}
	since, ok := queryTime(c, "since")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	readings, err := h.service.ListEnergyReadings(c.Request.Context(), ports.EnergyFilter{
		EquipmentID: int64(equipmentID),
		Since:       since,
		Limit:       limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, readings)
}

// RecordEnergyReading handles POST /api/energy/readings
func (h *Handler) RecordEnergyReading(c *gin.Context) {
	var req EnergyReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	reading, err := h.service.RecordEnergyReading(c.Request.Context(), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reading)
}

// AnalyzeLogs handles GET /api/logs/analysis. Advisor failures still answer
// 200 with the fallback analysis.
func (h *Handler) AnalyzeLogs(c *gin.Context) {
	report, err := h.service.AnalyzeLogs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	logs := report.Logs
	if logs == nil {
		logs = []*models.ActivityLog{}
	}
	c.JSON(http.StatusOK, LogAnalysisResponse{
		Logs:     logs,
		Analysis: report.Analysis,
		Degraded: report.Degraded,
	})
}

// RecommendEnergy handles GET /api/recommendations/energy
func (h *Handler) RecommendEnergy(c *gin.Context) {
	report, err := h.service.RecommendEnergy(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	readings := report.Readings
	if readings == nil {
		readings = []*models.EnergyReading{}
	}
	c.JSON(http.StatusOK, EnergyRecommendationsResponse{
		Readings:        readings,
		Recommendations: report.Recommendations,
		Degraded:        report.Degraded,
	})
}
