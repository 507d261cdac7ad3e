package models

import (
	"strings"
	"time"
)

// Severity is shared by alerts and activity log entries
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// ValidateSeverity checks if the severity is known
func ValidateSeverity(s Severity) error {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return nil
	default:
		return Invalidf("unknown severity %q", s)
	}
}

// AlertStatus represents the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusResolved AlertStatus = "resolved"
	AlertStatusIgnored  AlertStatus = "ignored"
)

// ValidateAlertStatus checks if the alert status is known
func ValidateAlertStatus(s AlertStatus) error {
	switch s {
	case AlertStatusActive, AlertStatusResolved, AlertStatusIgnored:
		return nil
	default:
		return Invalidf("unknown alert status %q", s)
	}
}

// Alert is a notice of an abnormal grid condition
type Alert struct {
	ID           int64       `json:"id" db:"id"`
	Title        string      `json:"title" db:"title"`
	Description  string      `json:"description" db:"description"`
	Severity     Severity    `json:"severity" db:"severity"`
	Status       AlertStatus `json:"status" db:"status"`
	EquipmentID  *int64      `json:"equipmentId,omitempty" db:"equipment_id"`
	ResolvedByID *int64      `json:"resolvedById,omitempty" db:"resolved_by_id"`
	ResolvedAt   *time.Time  `json:"resolvedAt,omitempty" db:"resolved_at"`
	Notes        string      `json:"notes,omitempty" db:"notes"`
	Timestamp    time.Time   `json:"timestamp" db:"timestamp"`
}

// Validate checks the alert fields and the resolution invariant:
// status, resolvedById and resolvedAt are either all resolved or none are set.
func (a *Alert) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return Invalidf("title is required")
	}
	if err := ValidateSeverity(a.Severity); err != nil {
		return err
	}
	if err := ValidateAlertStatus(a.Status); err != nil {
		return err
	}
	resolved := a.Status == AlertStatusResolved
	if resolved != (a.ResolvedByID != nil) || resolved != (a.ResolvedAt != nil) {
		return Invalidf("resolved alerts must carry resolvedById and resolvedAt, and only resolved alerts may")
	}
	return nil
}

// Resolve marks an active alert resolved by userID at the given time.
// An already resolved alert is left untouched and reported with alreadyResolved.
func (a *Alert) Resolve(userID int64, at time.Time, notes string) (alreadyResolved bool, err error) {
	switch a.Status {
	case AlertStatusResolved:
		return true, nil
	case AlertStatusActive:
	default:
		return false, &TransitionError{From: string(a.Status), To: string(AlertStatusResolved)}
	}
	if userID <= 0 {
		return false, Invalidf("resolvedById is required")
	}
	resolvedAt := at
	a.Status = AlertStatusResolved
	a.ResolvedByID = &userID
	a.ResolvedAt = &resolvedAt
	if notes != "" {
		a.Notes = notes
	}
	return false, nil
}

// Ignore dismisses an active alert
func (a *Alert) Ignore(notes string) error {
	if a.Status != AlertStatusActive {
		return &TransitionError{From: string(a.Status), To: string(AlertStatusIgnored)}
	}
	a.Status = AlertStatusIgnored
	if notes != "" {
		a.Notes = notes
	}
	return nil
}

// Clone returns a copy that shares no pointers with a
func (a *Alert) Clone() *Alert {
	out := *a
	if a.EquipmentID != nil {
		v := *a.EquipmentID
		out.EquipmentID = &v
	}
	if a.ResolvedByID != nil {
		v := *a.ResolvedByID
		out.ResolvedByID = &v
	}
	if a.ResolvedAt != nil {
		v := *a.ResolvedAt
		out.ResolvedAt = &v
	}
	return &out
}

// AlertPatch holds the alert fields editable outside the lifecycle
type AlertPatch struct {
	Title       *string
	Description *string
	Severity    *Severity
	EquipmentID *int64
	Notes       *string
}

// Apply merges the patch into a and revalidates the result
func (p AlertPatch) Apply(a *Alert) error {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Severity != nil {
		a.Severity = *p.Severity
	}
	if p.EquipmentID != nil {
		a.EquipmentID = p.EquipmentID
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	return a.Validate()
}
