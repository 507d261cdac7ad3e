package models

import (
	"fmt"
	"strings"
	"time"
)

// PermitStatus represents the workflow state of a work permit
type PermitStatus string

const (
	PermitStatusPending    PermitStatus = "pending"
	PermitStatusApproved   PermitStatus = "approved"
	PermitStatusInProgress PermitStatus = "in_progress"
	PermitStatusCompleted  PermitStatus = "completed"
	PermitStatusRejected   PermitStatus = "rejected"
)

// permitTransitions is the permit workflow: current status -> allowed next statuses.
// completed and rejected are terminal.
var permitTransitions = map[PermitStatus][]PermitStatus{
	PermitStatusPending:    {PermitStatusApproved, PermitStatusRejected},
	PermitStatusApproved:   {PermitStatusInProgress},
	PermitStatusInProgress: {PermitStatusCompleted},
	PermitStatusCompleted:  nil,
	PermitStatusRejected:   nil,
}

// ValidatePermitStatus checks if the permit status is known
func ValidatePermitStatus(s PermitStatus) error {
	if _, ok := permitTransitions[s]; !ok {
		return Invalidf("unknown permit status %q", s)
	}
	return nil
}

// CanTransition reports whether a permit may move from one status to another
func CanTransition(from, to PermitStatus) bool {
	for _, next := range permitTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s
func (s PermitStatus) IsTerminal() bool {
	return len(permitTransitions[s]) == 0
}

// IsDecision reports whether moving into s is an approve/reject decision
func (s PermitStatus) IsDecision() bool {
	return s == PermitStatusApproved || s == PermitStatusRejected
}

// WorkPermit authorizes work on equipment for a bounded time window
type WorkPermit struct {
	ID             int64        `json:"id" db:"id"`
	PermitNumber   string       `json:"permitNumber" db:"permit_number"`
	Title          string       `json:"title" db:"title"`
	Description    string       `json:"description" db:"description"`
	Status         PermitStatus `json:"status" db:"status"`
	StartTime      time.Time    `json:"startTime" db:"start_time"`
	EndTime        time.Time    `json:"endTime" db:"end_time"`
	Location       string       `json:"location" db:"location"`
	RequestedByID  int64        `json:"requestedById" db:"requested_by_id"`
	ApprovedByID   *int64       `json:"approvedById,omitempty" db:"approved_by_id"`
	EquipmentIDs   []int64      `json:"equipmentIds" db:"-"`
	SafetyMeasures []string     `json:"safetyMeasures" db:"-"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

// Validate checks the permit fields that must hold in every stored state
func (p *WorkPermit) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return Invalidf("title is required")
	}
	if p.RequestedByID <= 0 {
		return Invalidf("requestedById is required")
	}
	if err := ValidatePermitStatus(p.Status); err != nil {
		return err
	}
	if p.StartTime.IsZero() || p.EndTime.IsZero() {
		return Invalidf("startTime and endTime are required")
	}
	if !p.EndTime.After(p.StartTime) {
		return Invalidf("endTime must be after startTime")
	}
	return nil
}

// Clone returns a copy that shares no slices with p
func (p *WorkPermit) Clone() *WorkPermit {
	out := *p
	out.EquipmentIDs = cloneSlice(p.EquipmentIDs)
	out.SafetyMeasures = cloneSlice(p.SafetyMeasures)
	if p.ApprovedByID != nil {
		id := *p.ApprovedByID
		out.ApprovedByID = &id
	}
	return &out
}

// PermitPatch holds a partial permit update; nil fields are left unchanged
type PermitPatch struct {
	Title          *string
	Description    *string
	Status         *PermitStatus
	StartTime      *time.Time
	EndTime        *time.Time
	Location       *string
	ApprovedByID   *int64
	EquipmentIDs   []int64
	SafetyMeasures []string
}

// Transition returns the target status if the patch changes status, else "".
func (p PermitPatch) Transition(current PermitStatus) PermitStatus {
	if p.Status == nil || *p.Status == current {
		return ""
	}
	return *p.Status
}

// Apply merges the patch into permit following the workflow rules.
// permit is left untouched when an error is returned.
func (p PermitPatch) Apply(permit *WorkPermit) error {
	next := permit.Clone()
	target := p.Transition(permit.Status)

	if target != "" {
		if err := ValidatePermitStatus(target); err != nil {
			return err
		}
		if !CanTransition(permit.Status, target) {
			return &TransitionError{From: string(permit.Status), To: string(target)}
		}
		if target == PermitStatusApproved && (p.ApprovedByID == nil || *p.ApprovedByID <= 0) {
			return Invalidf("approvedById is required to approve a permit")
		}
		next.Status = target
	}
	// An echoed approver is not a change.
	if p.ApprovedByID != nil && !sameID(p.ApprovedByID, permit.ApprovedByID) {
		if target != PermitStatusApproved {
			return Invalidf("approvedById may only be set when approving a permit")
		}
		id := *p.ApprovedByID
		next.ApprovedByID = &id
	}

	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.StartTime != nil {
		next.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		next.EndTime = *p.EndTime
	}
	if p.Location != nil {
		next.Location = *p.Location
	}
	if p.EquipmentIDs != nil {
		next.EquipmentIDs = cloneSlice(p.EquipmentIDs)
	}
	if p.SafetyMeasures != nil {
		next.SafetyMeasures = cloneSlice(p.SafetyMeasures)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*permit = *next
	return nil
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// TransitionError describes a rejected lifecycle move
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// Unwrap lets errors.Is match ErrInvalidTransition
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
