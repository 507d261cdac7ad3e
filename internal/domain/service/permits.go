package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/logger"
)

func (s *GridService) ListPermits(ctx context.Context, filter ports.PermitFilter) ([]*models.WorkPermit, error) {
	if filter.Status != "" {
		if err := models.ValidatePermitStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	return s.store.Permits.List(ctx, filter)
}

func (s *GridService) GetPermit(ctx context.Context, id int64) (*models.WorkPermit, error) {
	return s.store.Permits.GetByID(ctx, id)
}

// CreatePermit files a new permit request. New permits always start pending
// and are numbered by the service.
func (s *GridService) CreatePermit(ctx context.Context, actor models.Actor, permit *models.WorkPermit) (*models.WorkPermit, error) {
	s.getLogger().Infow("CreatePermit started", "title", permit.Title, "requested_by", permit.RequestedByID)

	if permit.Status == "" {
		permit.Status = models.PermitStatusPending
	}
	if permit.Status != models.PermitStatusPending {
		return nil, models.Invalidf("new permits must be pending, got %q", permit.Status)
	}
	if permit.ApprovedByID != nil {
		return nil, models.Invalidf("approvedById may only be set when approving a permit")
	}
	if permit.RequestedByID == 0 {
		permit.RequestedByID = actor.UserID
	}
	if err := permit.Validate(); err != nil {
		s.getLogger().Warnw("CreatePermit validation failed", "title", permit.Title, "error", err)
		return nil, err
	}
	if permit.EquipmentIDs == nil {
		permit.EquipmentIDs = []int64{}
	}
	if permit.SafetyMeasures == nil {
		permit.SafetyMeasures = []string{}
	}

	now := s.now()
	permit.PermitNumber = newPermitNumber(now)
	permit.CreatedAt = now
	permit.UpdatedAt = now
	if err := s.store.Permits.Create(ctx, permit); err != nil {
		s.getLogger().Errorw("CreatePermit failed", "permit_number", permit.PermitNumber, "error", err)
		return nil, err
	}

	s.record(ctx, actor, "permit_created", models.EntityPermit, permit.ID, models.SeverityInfo, "Work permit %s requested: %s", permit.PermitNumber, permit.Title)
	s.getLogger().Infow("CreatePermit completed successfully", "permit_id", permit.ID, "permit_number", permit.PermitNumber)
	return permit, nil
}

// UpdatePermit applies a patch under the permit's record lock. Status moves
// follow the workflow table; approve and reject need the admin or manager role.
// A move into approved without an approver records the acting user.
func (s *GridService) UpdatePermit(ctx context.Context, actor models.Actor, id int64, patch models.PermitPatch) (*models.WorkPermit, error) {
	var from, to models.PermitStatus
	updated, err := s.store.Permits.Update(ctx, id, func(p *models.WorkPermit) error {
		from = p.Status
		to = patch.Transition(p.Status)
		if to.IsDecision() && !actor.CanApprove() {
			return fmt.Errorf("only admins and managers may %s permits: %w", decisionVerb(to), models.ErrForbidden)
		}
		if to == models.PermitStatusApproved && patch.ApprovedByID == nil && actor.UserID > 0 {
			approver := actor.UserID
			patch.ApprovedByID = &approver
		}
		if err := patch.Apply(p); err != nil {
			return err
		}
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if to != "" {
			logger.PermitTransitionTotal.WithLabelValues(string(from), string(to), "rejected").Inc()
		}
		var terr *models.TransitionError
		if errors.As(err, &terr) {
			s.getLogger().Warnw("UpdatePermit rejected transition", "permit_id", id, "from", terr.From, "to", terr.To)
		} else {
			s.getLogger().Warnw("UpdatePermit failed", "permit_id", id, "error", err)
		}
		return nil, err
	}

	if to != "" {
		logger.PermitTransitionTotal.WithLabelValues(string(from), string(to), "ok").Inc()
		severity := models.SeverityInfo
		if to == models.PermitStatusRejected {
			severity = models.SeverityWarning
		}
		s.record(ctx, actor, "permit_"+string(to), models.EntityPermit, id, severity, "Work permit %s moved from %s to %s", updated.PermitNumber, from, to)
	} else {
		s.record(ctx, actor, "permit_updated", models.EntityPermit, id, models.SeverityInfo, "Work permit %s updated", updated.PermitNumber)
	}
	s.getLogger().Infow("UpdatePermit completed successfully", "permit_id", id, "status", updated.Status)
	return updated, nil
}

func decisionVerb(status models.PermitStatus) string {
	if status == models.PermitStatusApproved {
		return "approve"
	}
	return "reject"
}
