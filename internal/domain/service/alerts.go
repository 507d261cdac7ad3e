package service

import (
	"context"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/logger"
)

func (s *GridService) ListAlerts(ctx context.Context, filter ports.AlertFilter) ([]*models.Alert, error) {
	if filter.Status != "" {
		if err := models.ValidateAlertStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	if filter.Severity != "" {
		if err := models.ValidateSeverity(filter.Severity); err != nil {
			return nil, err
		}
	}
	return s.store.Alerts.List(ctx, filter)
}

func (s *GridService) GetAlert(ctx context.Context, id int64) (*models.Alert, error) {
	return s.store.Alerts.GetByID(ctx, id)
}

// CreateAlert raises a new active alert
func (s *GridService) CreateAlert(ctx context.Context, actor models.Actor, alert *models.Alert) (*models.Alert, error) {
	if alert.Status == "" {
		alert.Status = models.AlertStatusActive
	}
	if alert.Status != models.AlertStatusActive {
		return nil, models.Invalidf("new alerts must be active, got %q", alert.Status)
	}
	if alert.Severity == "" {
		alert.Severity = models.SeverityWarning
	}
	if err := alert.Validate(); err != nil {
		return nil, err
	}
	if alert.EquipmentID != nil {
		if _, err := s.store.Equipment.GetByID(ctx, *alert.EquipmentID); err != nil {
			return nil, models.Invalidf("equipmentId %d does not reference known equipment", *alert.EquipmentID)
		}
	}
	alert.Timestamp = s.now()

	if err := s.store.Alerts.Create(ctx, alert); err != nil {
		s.getLogger().Errorw("CreateAlert failed", "title", alert.Title, "error", err)
		return nil, err
	}

	s.record(ctx, actor, "alert_created", models.EntityAlert, alert.ID, alert.Severity, "Alert raised: %s", alert.Title)
	s.getLogger().Infow("CreateAlert completed successfully", "alert_id", alert.ID, "severity", alert.Severity)
	return alert, nil
}

// UpdateAlert edits the descriptive fields of an alert; lifecycle fields are
// only changed through ResolveAlert and IgnoreAlert.
func (s *GridService) UpdateAlert(ctx context.Context, actor models.Actor, id int64, patch models.AlertPatch) (*models.Alert, error) {
	updated, err := s.store.Alerts.Update(ctx, id, patch.Apply)
	if err != nil {
		s.getLogger().Warnw("UpdateAlert failed", "alert_id", id, "error", err)
		return nil, err
	}
	s.record(ctx, actor, "alert_updated", models.EntityAlert, id, models.SeverityInfo, "Alert %d updated", id)
	return updated, nil
}

// ResolveAlert marks an alert resolved by the actor. Resolving twice returns the
// first resolution untouched with alreadyResolved set.
func (s *GridService) ResolveAlert(ctx context.Context, actor models.Actor, id int64, notes string) (*models.Alert, bool, error) {
	var already bool
	updated, err := s.store.Alerts.Update(ctx, id, func(a *models.Alert) error {
		var err error
		already, err = a.Resolve(actor.UserID, s.now(), notes)
		return err
	})
	if err != nil {
		logger.AlertLifecycleTotal.WithLabelValues("resolve", "rejected").Inc()
		s.getLogger().Warnw("ResolveAlert failed", "alert_id", id, "error", err)
		return nil, false, err
	}
	if already {
		logger.AlertLifecycleTotal.WithLabelValues("resolve", "already_resolved").Inc()
		s.getLogger().Infow("ResolveAlert on resolved alert", "alert_id", id, "resolved_by", *updated.ResolvedByID)
		return updated, true, nil
	}

	logger.AlertLifecycleTotal.WithLabelValues("resolve", "ok").Inc()
	s.record(ctx, actor, "alert_resolved", models.EntityAlert, id, models.SeverityInfo, "Alert %s resolved", updated.Title)
	s.getLogger().Infow("ResolveAlert completed successfully", "alert_id", id, "resolved_by", actor.UserID)
	return updated, false, nil
}

// IgnoreAlert dismisses an active alert
func (s *GridService) IgnoreAlert(ctx context.Context, actor models.Actor, id int64, notes string) (*models.Alert, error) {
	updated, err := s.store.Alerts.Update(ctx, id, func(a *models.Alert) error {
		return a.Ignore(notes)
	})
	if err != nil {
		logger.AlertLifecycleTotal.WithLabelValues("ignore", "rejected").Inc()
		s.getLogger().Warnw("IgnoreAlert failed", "alert_id", id, "error", err)
		return nil, err
	}

	logger.AlertLifecycleTotal.WithLabelValues("ignore", "ok").Inc()
	s.record(ctx, actor, "alert_ignored", models.EntityAlert, id, models.SeverityInfo, "Alert %s ignored", updated.Title)
	return updated, nil
}
