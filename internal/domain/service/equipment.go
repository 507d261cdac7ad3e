package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/logger"
)

func (s *GridService) ListEquipment(ctx context.Context, filter ports.EquipmentFilter) ([]*models.Equipment, error) {
	items, err := s.store.Equipment.List(ctx, filter)
	if err != nil {
		s.getLogger().Errorw("ListEquipment failed", "type", filter.Type, "status", filter.Status, "error", err)
		return nil, err
	}
	return items, nil
}

func (s *GridService) GetEquipment(ctx context.Context, id int64) (*models.Equipment, error) {
	return s.store.Equipment.GetByID(ctx, id)
}

// CreateEquipment validates and stores a new asset. An empty status
// defaults to the normal status of the asset's type.
func (s *GridService) CreateEquipment(ctx context.Context, actor models.Actor, equipment *models.Equipment) (*models.Equipment, error) {
	s.getLogger().Infow("CreateEquipment started", "name", equipment.Name, "type", equipment.Type)

	if err := models.ValidateEquipmentType(equipment.Type); err != nil {
		return nil, err
	}
	if equipment.Status == "" {
		equipment.Status = models.DefaultStatus(equipment.Type)
	}
	if err := equipment.Validate(); err != nil {
		s.getLogger().Warnw("CreateEquipment validation failed", "name", equipment.Name, "error", err)
		return nil, err
	}

	now := s.now()
	equipment.CreatedAt = now
	equipment.UpdatedAt = now
	if err := s.store.Equipment.Create(ctx, equipment); err != nil {
		s.getLogger().Errorw("CreateEquipment failed", "name", equipment.Name, "error", err)
		return nil, err
	}
	s.invalidateSummary(ctx)

	s.record(ctx, actor, "equipment_created", models.EntityEquipment, equipment.ID, models.SeverityInfo, "Equipment %s (%s) created", equipment.Name, equipment.Type)
	s.getLogger().Infow("CreateEquipment completed successfully", "equipment_id", equipment.ID, "status", equipment.Status)
	return equipment, nil
}

// UpdateEquipment applies a partial update; the stored record only changes if
// the merged result is valid.
func (s *GridService) UpdateEquipment(ctx context.Context, actor models.Actor, id int64, patch models.EquipmentPatch) (*models.Equipment, error) {
	var previous models.EquipmentStatus
	updated, err := s.store.Equipment.Update(ctx, id, func(e *models.Equipment) error {
		previous = e.Status
		if err := patch.Apply(e); err != nil {
			return err
		}
		e.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		s.getLogger().Warnw("UpdateEquipment failed", "equipment_id", id, "error", err)
		return nil, err
	}
	s.invalidateSummary(ctx)

	if previous != updated.Status {
		severity := models.SeverityInfo
		switch models.ClassifyStatus(updated.Type, updated.Status) {
		case models.StatusClassFault:
			severity = models.SeverityError
		case models.StatusClassWarning:
			severity = models.SeverityWarning
		}
		s.record(ctx, actor, "equipment_status_changed", models.EntityEquipment, id, severity, "Equipment %s status changed from %s to %s", updated.Name, previous, updated.Status)
	} else {
		s.record(ctx, actor, "equipment_updated", models.EntityEquipment, id, models.SeverityInfo, "Equipment %s updated", updated.Name)
	}
	s.getLogger().Infow("UpdateEquipment completed successfully", "equipment_id", id, "status", updated.Status)
	return updated, nil
}

func (s *GridService) DeleteEquipment(ctx context.Context, actor models.Actor, id int64) error {
	if err := s.store.Equipment.Delete(ctx, id); err != nil {
		s.getLogger().Warnw("DeleteEquipment failed", "equipment_id", id, "error", err)
		return err
	}
	s.invalidateSummary(ctx)

	s.record(ctx, actor, "equipment_deleted", models.EntityEquipment, id, models.SeverityWarning, "Equipment %d deleted", id)
	s.getLogger().Infow("DeleteEquipment completed successfully", "equipment_id", id)
	return nil
}

// EquipmentSummary returns the status aggregation, served from the cache when possible
func (s *GridService) EquipmentSummary(ctx context.Context) (*models.StatusSummary, error) {
	if summary := s.cachedSummary(ctx); summary != nil {
		return summary, nil
	}

	gen := s.summaryGen.Load()
	items, err := s.store.Equipment.List(ctx, ports.EquipmentFilter{})
	if err != nil {
		s.getLogger().Errorw("EquipmentSummary failed to list equipment", "error", err)
		return nil, err
	}
	summary := models.SummarizeEquipment(items, s.now())
	logger.RecordSummary(summary)

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			err = s.cache.Set(ctx, SummaryCacheKey, payload, s.summaryTTL)
		}
		if err != nil {
			s.getLogger().Warnw("EquipmentSummary cache write failed", "error", err)
		}
		// An equipment write that landed after the listing makes this entry stale.
		if s.summaryGen.Load() != gen {
			if err := s.cache.Delete(ctx, SummaryCacheKey); err != nil {
				s.getLogger().Warnw("Failed to drop stale summary", "error", err)
			}
		}
	}
	return summary, nil
}

func (s *GridService) cachedSummary(ctx context.Context) *models.StatusSummary {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, SummaryCacheKey)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.getLogger().Warnw("EquipmentSummary cache read failed", "error", err)
		}
		logger.CacheHitTotal.WithLabelValues("miss").Inc()
		return nil
	}

	var summary models.StatusSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		s.getLogger().Warnw("EquipmentSummary cache entry is corrupt", "error", err)
		logger.CacheHitTotal.WithLabelValues("miss").Inc()
		return nil
	}
	logger.CacheHitTotal.WithLabelValues("hit").Inc()
	s.getLogger().Debugw("EquipmentSummary cache hit")
	return &summary
}

func (s *GridService) invalidateSummary(ctx context.Context) {
	s.summaryGen.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, SummaryCacheKey); err != nil {
		s.getLogger().Warnw("Failed to invalidate summary cache", "error", err)
	}
}
