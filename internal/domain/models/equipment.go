package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EquipmentType represents the kind of grid asset
type EquipmentType string

const (
	EquipmentTypeTransformer    EquipmentType = "transformer"
	EquipmentTypeCircuitBreaker EquipmentType = "circuit_breaker"
	EquipmentTypeFeeder         EquipmentType = "feeder"
	EquipmentTypeDisconnector   EquipmentType = "disconnector"
	EquipmentTypeOther          EquipmentType = "other"
)

// EquipmentTypes lists every supported equipment type in display order
var EquipmentTypes = []EquipmentType{
	EquipmentTypeTransformer,
	EquipmentTypeCircuitBreaker,
	EquipmentTypeFeeder,
	EquipmentTypeDisconnector,
	EquipmentTypeOther,
}

// EquipmentStatus represents the operational status of an asset
type EquipmentStatus string

const (
	EquipmentStatusOperational EquipmentStatus = "operational"
	EquipmentStatusMaintenance EquipmentStatus = "maintenance"
	EquipmentStatusWarning     EquipmentStatus = "warning"
	EquipmentStatusFault       EquipmentStatus = "fault"
	EquipmentStatusClosed      EquipmentStatus = "closed" // breaker conducting
	EquipmentStatusOpen        EquipmentStatus = "open"   // breaker open in normal switching
)

// StatusClass is the dashboard bucket an equipment status is counted under
type StatusClass string

const (
	StatusClassOnline  StatusClass = "online"
	StatusClassOffline StatusClass = "offline"
	StatusClassWarning StatusClass = "warning"
	StatusClassFault   StatusClass = "fault"
	StatusClassUnknown StatusClass = "unknown"
)

var lineStatuses = map[EquipmentStatus]StatusClass{
	EquipmentStatusOperational: StatusClassOnline,
	EquipmentStatusMaintenance: StatusClassOffline,
	EquipmentStatusWarning:     StatusClassWarning,
	EquipmentStatusFault:       StatusClassFault,
}

var breakerStatuses = map[EquipmentStatus]StatusClass{
	EquipmentStatusClosed:      StatusClassOnline,
	EquipmentStatusOpen:        StatusClassOnline,
	EquipmentStatusMaintenance: StatusClassOffline,
	EquipmentStatusFault:       StatusClassFault,
}

// statusVocabulary maps each equipment type to its allowed statuses
var statusVocabulary = map[EquipmentType]map[EquipmentStatus]StatusClass{
	EquipmentTypeTransformer:    lineStatuses,
	EquipmentTypeCircuitBreaker: breakerStatuses,
	EquipmentTypeFeeder:         lineStatuses,
	EquipmentTypeDisconnector:   lineStatuses,
	EquipmentTypeOther:          lineStatuses,
}

// ValidateEquipmentType checks if the equipment type is supported
func ValidateEquipmentType(t EquipmentType) error {
	if _, ok := statusVocabulary[t]; !ok {
		return Invalidf("unknown equipment type %q", t)
	}
	return nil
}

// ValidateStatusForType checks that status belongs to the vocabulary of t
func ValidateStatusForType(t EquipmentType, status EquipmentStatus) error {
	if err := ValidateEquipmentType(t); err != nil {
		return err
	}
	if _, ok := statusVocabulary[t][status]; !ok {
		return Invalidf("status %q is not valid for equipment type %q", status, t)
	}
	return nil
}

// DefaultStatus returns the status a new asset of type t starts in
func DefaultStatus(t EquipmentType) EquipmentStatus {
	if t == EquipmentTypeCircuitBreaker {
		return EquipmentStatusClosed
	}
	return EquipmentStatusOperational
}

// ClassifyStatus returns the dashboard bucket for the status of an asset of type t.
// Anything outside the type's vocabulary is StatusClassUnknown.
func ClassifyStatus(t EquipmentType, status EquipmentStatus) StatusClass {
	vocab, ok := statusVocabulary[t]
	if !ok {
		return StatusClassUnknown
	}
	class, ok := vocab[status]
	if !ok {
		return StatusClassUnknown
	}
	return class
}

// Specifications is the free-form technical data of an asset, stored as JSON
type Specifications map[string]any

// Value implements driver.Valuer
func (s Specifications) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *Specifications) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported specifications type %T", src)
	}
	return json.Unmarshal(raw, s)
}

// Clone returns a deep-enough copy for top-level keys
func (s Specifications) Clone() Specifications {
	if s == nil {
		return nil
	}
	out := make(Specifications, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equipment represents a physical grid asset
type Equipment struct {
	ID                  int64           `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	Type                EquipmentType   `json:"type" db:"type"`
	Location            string          `json:"location" db:"location"`
	Voltage             float64         `json:"voltage" db:"voltage"`
	Status              EquipmentStatus `json:"status" db:"status"`
	Specifications      Specifications  `json:"specifications,omitempty" db:"specifications"`
	InstallationDate    *time.Time      `json:"installationDate,omitempty" db:"installation_date"`
	LastMaintenanceDate *time.Time      `json:"lastMaintenanceDate,omitempty" db:"last_maintenance_date"`
	NextMaintenanceDate *time.Time      `json:"nextMaintenanceDate,omitempty" db:"next_maintenance_date"`
	ManufacturerID      *int64          `json:"manufacturerId,omitempty" db:"manufacturer_id"`
	SerialNumber        string          `json:"serialNumber,omitempty" db:"serial_number"`
	Notes               string          `json:"notes,omitempty" db:"notes"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time       `json:"updatedAt" db:"updated_at"`
}

// Validate checks required fields and the type/status pairing
func (e *Equipment) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return Invalidf("name is required")
	}
	if e.Voltage < 0 {
		return Invalidf("voltage must not be negative")
	}
	if err := ValidateStatusForType(e.Type, e.Status); err != nil {
		return err
	}
	if e.LastMaintenanceDate != nil && e.NextMaintenanceDate != nil &&
		e.NextMaintenanceDate.Before(*e.LastMaintenanceDate) {
		return Invalidf("nextMaintenanceDate must not be before lastMaintenanceDate")
	}
	return nil
}

// MaintenanceDue reports whether the next maintenance falls within [now, now+window]
func (e *Equipment) MaintenanceDue(now time.Time, window time.Duration) bool {
	if e.NextMaintenanceDate == nil {
		return false
	}
	next := *e.NextMaintenanceDate
	return !next.Before(now) && !next.After(now.Add(window))
}

// EquipmentPatch holds a partial equipment update; nil fields are left unchanged
type EquipmentPatch struct {
	Name                *string
	Type                *EquipmentType
	Location            *string
	Voltage             *float64
	Status              *EquipmentStatus
	Specifications      Specifications
	InstallationDate    *time.Time
	LastMaintenanceDate *time.Time
	NextMaintenanceDate *time.Time
	ManufacturerID      *int64
	SerialNumber        *string
	Notes               *string
}

// Apply merges the patch into e and revalidates the result
func (p EquipmentPatch) Apply(e *Equipment) error {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Voltage != nil {
		e.Voltage = *p.Voltage
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Specifications != nil {
		e.Specifications = p.Specifications.Clone()
	}
	if p.InstallationDate != nil {
		e.InstallationDate = p.InstallationDate
	}
	if p.LastMaintenanceDate != nil {
		e.LastMaintenanceDate = p.LastMaintenanceDate
	}
	if p.NextMaintenanceDate != nil {
		e.NextMaintenanceDate = p.NextMaintenanceDate
	}
	if p.ManufacturerID != nil {
		e.ManufacturerID = p.ManufacturerID
	}
	if p.SerialNumber != nil {
		e.SerialNumber = *p.SerialNumber
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	return e.Validate()
}
