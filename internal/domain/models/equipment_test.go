package models

import (
	"errors"
	"testing"
	"time"
)

func TestValidateStatusForType(t *testing.T) {
	tests := []struct {
		name    string
		eqType  EquipmentType
		status  EquipmentStatus
		wantErr bool
	}{
		{name: "transformer operational", eqType: EquipmentTypeTransformer, status: EquipmentStatusOperational},
		{name: "transformer maintenance", eqType: EquipmentTypeTransformer, status: EquipmentStatusMaintenance},
		{name: "feeder warning", eqType: EquipmentTypeFeeder, status: EquipmentStatusWarning},
		{name: "breaker closed", eqType: EquipmentTypeCircuitBreaker, status: EquipmentStatusClosed},
		{name: "breaker open", eqType: EquipmentTypeCircuitBreaker, status: EquipmentStatusOpen},
		{name: "transformer cannot be open", eqType: EquipmentTypeTransformer, status: EquipmentStatusOpen, wantErr: true},
		{name: "breaker cannot be operational", eqType: EquipmentTypeCircuitBreaker, status: EquipmentStatusOperational, wantErr: true},
		{name: "unknown type", eqType: "capacitor", status: EquipmentStatusOperational, wantErr: true},
		{name: "empty status", eqType: EquipmentTypeFeeder, status: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatusForType(tt.eqType, tt.status)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStatusForType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("ValidateStatusForType() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		eqType EquipmentType
		status EquipmentStatus
		want   StatusClass
	}{
		{EquipmentTypeTransformer, EquipmentStatusOperational, StatusClassOnline},
		{EquipmentTypeTransformer, EquipmentStatusMaintenance, StatusClassOffline},
		{EquipmentTypeTransformer, EquipmentStatusWarning, StatusClassWarning},
		{EquipmentTypeTransformer, EquipmentStatusFault, StatusClassFault},
		{EquipmentTypeCircuitBreaker, EquipmentStatusClosed, StatusClassOnline},
		{EquipmentTypeCircuitBreaker, EquipmentStatusOpen, StatusClassOnline},
		{EquipmentTypeCircuitBreaker, EquipmentStatusMaintenance, StatusClassOffline},
		{EquipmentTypeCircuitBreaker, EquipmentStatusWarning, StatusClassUnknown},
		{"capacitor", EquipmentStatusOperational, StatusClassUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.eqType)+"/"+string(tt.status), func(t *testing.T) {
			if got := ClassifyStatus(tt.eqType, tt.status); got != tt.want {
				t.Errorf("ClassifyStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultStatusIsInVocabulary(t *testing.T) {
	for _, eqType := range EquipmentTypes {
		if err := ValidateStatusForType(eqType, DefaultStatus(eqType)); err != nil {
			t.Errorf("DefaultStatus(%s) not valid: %v", eqType, err)
		}
	}
}

func TestEquipmentValidate(t *testing.T) {
	last := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	before := last.Add(-24 * time.Hour)

	tests := []struct {
		name    string
		eq      Equipment
		wantErr bool
	}{
		{
			name: "valid transformer",
			eq:   Equipment{Name: "T1", Type: EquipmentTypeTransformer, Status: EquipmentStatusOperational, Voltage: 110},
		},
		{
			name:    "missing name",
			eq:      Equipment{Type: EquipmentTypeTransformer, Status: EquipmentStatusOperational},
			wantErr: true,
		},
		{
			name:    "negative voltage",
			eq:      Equipment{Name: "T1", Type: EquipmentTypeTransformer, Status: EquipmentStatusOperational, Voltage: -1},
			wantErr: true,
		},
		{
			name:    "status outside vocabulary",
			eq:      Equipment{Name: "CB1", Type: EquipmentTypeCircuitBreaker, Status: EquipmentStatusOperational},
			wantErr: true,
		},
		{
			name: "next maintenance before last",
			eq: Equipment{
				Name: "F1", Type: EquipmentTypeFeeder, Status: EquipmentStatusOperational,
				LastMaintenanceDate: &last, NextMaintenanceDate: &before,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.eq.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEquipmentPatchApply(t *testing.T) {
	eq := Equipment{Name: "T1", Type: EquipmentTypeTransformer, Status: EquipmentStatusOperational, Voltage: 110, Location: "North"}

	status := EquipmentStatusMaintenance
	if err := (EquipmentPatch{Status: &status}).Apply(&eq); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if eq.Status != EquipmentStatusMaintenance {
		t.Errorf("Status = %v, want maintenance", eq.Status)
	}
	if eq.Location != "North" || eq.Voltage != 110 {
		t.Errorf("untouched fields changed: %+v", eq)
	}

	breaker := EquipmentTypeCircuitBreaker
	if err := (EquipmentPatch{Type: &breaker}).Apply(&eq); !errors.Is(err, ErrValidation) {
		t.Errorf("changing type without a matching status should fail, got %v", err)
	}
}

func TestMaintenanceDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name string
		next *time.Time
		want bool
	}{
		{"no date", nil, false},
		{"now", at(0), true},
		{"in ten days", at(10 * 24 * time.Hour), true},
		{"exactly thirty days", at(MaintenanceWindow), true},
		{"in thirty one days", at(31 * 24 * time.Hour), false},
		{"overdue", at(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq := Equipment{NextMaintenanceDate: tt.next}
			if got := eq.MaintenanceDue(now, MaintenanceWindow); got != tt.want {
				t.Errorf("MaintenanceDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpecificationsScan(t *testing.T) {
	var s Specifications
	if err := s.Scan([]byte(`{"ratingMVA":40,"cooling":"ONAN"}`)); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if s["cooling"] != "ONAN" {
		t.Errorf("cooling = %v, want ONAN", s["cooling"])
	}

	if err := s.Scan(nil); err != nil || s != nil {
		t.Errorf("Scan(nil) = %v, %v", s, err)
	}
	if err := s.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}
