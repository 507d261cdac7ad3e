package service

import (
	"context"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/logger"
)

const maxActivityLimit = 500

func (s *GridService) ListActivityLogs(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 || limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return s.store.ActivityLogs.List(ctx, limit)
}

// RecordActivity appends a client-supplied activity entry
func (s *GridService) RecordActivity(ctx context.Context, entry *models.ActivityLog) (*models.ActivityLog, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	entry.Timestamp = s.now()
	if err := s.store.ActivityLogs.Append(ctx, entry); err != nil {
		s.getLogger().Errorw("RecordActivity failed", "action", entry.Action, "error", err)
		return nil, err
	}
	return entry, nil
}

func (s *GridService) ListEnergyReadings(ctx context.Context, filter ports.EnergyFilter) ([]*models.EnergyReading, error) {
	if filter.Limit <= 0 || filter.Limit > maxActivityLimit {
		filter.Limit = maxActivityLimit
	}
	return s.store.EnergyReadings.List(ctx, filter)
}

// RecordEnergyReading stores a reading for a known asset
func (s *GridService) RecordEnergyReading(ctx context.Context, reading *models.EnergyReading) (*models.EnergyReading, error) {
	if err := reading.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Equipment.GetByID(ctx, reading.EquipmentID); err != nil {
		return nil, models.Invalidf("equipmentId %d does not reference known equipment", reading.EquipmentID)
	}
	reading.Timestamp = s.now()
	if err := s.store.EnergyReadings.Append(ctx, reading); err != nil {
		s.getLogger().Errorw("RecordEnergyReading failed", "equipment_id", reading.EquipmentID, "error", err)
		return nil, err
	}
	return reading, nil
}

// AnalyzeLogs runs the advisor over the most recent activity. Advisor failures
// degrade to the fallback analysis; only store errors are returned.
func (s *GridService) AnalyzeLogs(ctx context.Context) (*ports.LogAnalysisReport, error) {
	logs, err := s.store.ActivityLogs.List(ctx, s.sampleSize)
	if err != nil {
		s.getLogger().Errorw("AnalyzeLogs failed to load activity", "error", err)
		return nil, err
	}

	result := models.LogAnalysisResult{
		Outcome:  models.AdvisorDegraded,
		Analysis: models.FallbackLogAnalysis(),
		Reason:   "advisor not configured",
	}
	if s.advisor != nil {
		result = s.advisor.AnalyzeLogs(ctx, logs)
	}
	logger.AdvisorCallTotal.WithLabelValues("log_analysis", string(result.Outcome)).Inc()
	if result.Outcome == models.AdvisorDegraded {
		s.getLogger().Warnw("AnalyzeLogs degraded", "reason", result.Reason, "logs", len(logs))
	}

	return &ports.LogAnalysisReport{
		Logs:     logs,
		Analysis: result.Analysis,
		Degraded: result.Outcome == models.AdvisorDegraded,
	}, nil
}

// RecommendEnergy runs the advisor over the most recent readings
func (s *GridService) RecommendEnergy(ctx context.Context) (*ports.EnergyReport, error) {
	readings, err := s.store.EnergyReadings.List(ctx, ports.EnergyFilter{Limit: s.sampleSize})
	if err != nil {
		s.getLogger().Errorw("RecommendEnergy failed to load readings", "error", err)
		return nil, err
	}

	result := models.EnergyRecommendationsResult{
		Outcome:         models.AdvisorDegraded,
		Recommendations: models.FallbackEnergyRecommendations(),
		Reason:          "advisor not configured",
	}
	if s.advisor != nil {
		result = s.advisor.RecommendEnergy(ctx, readings)
	}
	logger.AdvisorCallTotal.WithLabelValues("energy", string(result.Outcome)).Inc()
	if result.Outcome == models.AdvisorDegraded {
		s.getLogger().Warnw("RecommendEnergy degraded", "reason", result.Reason, "readings", len(readings))
	}

	return &ports.EnergyReport{
		Readings:        readings,
		Recommendations: result.Recommendations,
		Degraded:        result.Outcome == models.AdvisorDegraded,
	}, nil
}
