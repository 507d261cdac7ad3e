package models

import (
	"testing"
	"time"
)

func TestSummarizeEquipment_CountsEveryRecordOnce(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	soon := now.Add(5 * 24 * time.Hour)
	late := now.Add(45 * 24 * time.Hour)

	items := []*Equipment{
		{Type: EquipmentTypeTransformer, Status: EquipmentStatusOperational, NextMaintenanceDate: &soon},
		{Type: EquipmentTypeTransformer, Status: EquipmentStatusMaintenance},
		{Type: EquipmentTypeTransformer, Status: EquipmentStatusFault, NextMaintenanceDate: &late},
		{Type: EquipmentTypeCircuitBreaker, Status: EquipmentStatusClosed},
		{Type: EquipmentTypeCircuitBreaker, Status: EquipmentStatusOpen, NextMaintenanceDate: &soon},
		{Type: EquipmentTypeCircuitBreaker, Status: EquipmentStatusOperational}, // legacy row
		{Type: EquipmentTypeFeeder, Status: EquipmentStatusWarning},
	}

	s := SummarizeEquipment(items, now)

	if s.Total != len(items) {
		t.Fatalf("Total = %d, want %d", s.Total, len(items))
	}
	counted := 0
	for _, ts := range s.ByType {
		if got := ts.Online + ts.Offline + ts.Warning + ts.Fault + ts.Unknown; got != ts.Total {
			t.Errorf("bucket sum %d != total %d", got, ts.Total)
		}
		counted += ts.Total
	}
	if counted != len(items) {
		t.Errorf("counted %d, want %d", counted, len(items))
	}

	tr := s.ByType[EquipmentTypeTransformer]
	if tr.Online != 1 || tr.Offline != 1 || tr.Fault != 1 {
		t.Errorf("transformer summary = %+v", tr)
	}
	cb := s.ByType[EquipmentTypeCircuitBreaker]
	if cb.Online != 2 || cb.Offline != 0 || cb.Unknown != 1 {
		t.Errorf("breaker summary = %+v", cb)
	}
	if s.ByType[EquipmentTypeFeeder].Warning != 1 {
		t.Errorf("feeder summary = %+v", s.ByType[EquipmentTypeFeeder])
	}
	if s.MaintenanceDue != 2 {
		t.Errorf("MaintenanceDue = %d, want 2", s.MaintenanceDue)
	}
}

func TestSummarizeEquipment_Empty(t *testing.T) {
	s := SummarizeEquipment(nil, time.Now())
	if s.Total != 0 || s.MaintenanceDue != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	for _, eqType := range EquipmentTypes {
		if s.ByType[eqType] == nil {
			t.Errorf("missing bucket for %s", eqType)
		}
	}
}
