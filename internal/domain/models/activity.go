package models

import (
	"strings"
	"time"
)

// Entity type names recorded on activity log entries
const (
	EntityUser      = "user"
	EntityEquipment = "equipment"
	EntityPermit    = "work_permit"
	EntityAlert     = "alert"
	EntityReading   = "energy_reading"
)

// ActivityLog is an append-only audit entry
type ActivityLog struct {
	ID          int64     `json:"id" db:"id" bson:"_id"`
	Action      string    `json:"action" db:"action" bson:"action"`
	Description string    `json:"description" db:"description" bson:"description"`
	UserID      *int64    `json:"userId,omitempty" db:"user_id" bson:"user_id,omitempty"`
	EntityType  string    `json:"entityType" db:"entity_type" bson:"entity_type"`
	EntityID    *int64    `json:"entityId,omitempty" db:"entity_id" bson:"entity_id,omitempty"`
	Severity    Severity  `json:"severity" db:"severity" bson:"severity"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp" bson:"timestamp"`
}

// Validate checks the required activity log fields
func (l *ActivityLog) Validate() error {
	if strings.TrimSpace(l.Action) == "" {
		return Invalidf("action is required")
	}
	if l.Severity == "" {
		l.Severity = SeverityInfo
	}
	return ValidateSeverity(l.Severity)
}

// DefaultEnergySource is the source recorded when a reading does not name one
const DefaultEnergySource = "zonus"

// EnergyReading is an append-only electrical measurement for an asset
type EnergyReading struct {
	ID          int64     `json:"id" db:"id" bson:"_id"`
	EquipmentID int64     `json:"equipmentId" db:"equipment_id" bson:"equipment_id"`
	Value       float64   `json:"value" db:"value" bson:"value"`
	Voltage     float64   `json:"voltage" db:"voltage" bson:"voltage"`
	Current     float64   `json:"current" db:"current" bson:"current"`
	Frequency   float64   `json:"frequency" db:"frequency" bson:"frequency"`
	PowerFactor float64   `json:"powerFactor" db:"power_factor" bson:"power_factor"`
	Source      string    `json:"source" db:"source" bson:"source"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp" bson:"timestamp"`
}

// Validate checks the reading and fills in the default source
func (r *EnergyReading) Validate() error {
	if r.EquipmentID <= 0 {
		return Invalidf("equipmentId is required")
	}
	if r.PowerFactor < -1 || r.PowerFactor > 1 {
		return Invalidf("powerFactor must be within [-1, 1]")
	}
	if r.Frequency < 0 {
		return Invalidf("frequency must not be negative")
	}
	if r.Source == "" {
		r.Source = DefaultEnergySource
	}
	return nil
}
