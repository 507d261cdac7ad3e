package models

import "time"

// MaintenanceWindow is how far ahead maintenance counts as due
const MaintenanceWindow = 30 * 24 * time.Hour

// TypeSummary counts the assets of one equipment type by status class
type TypeSummary struct {
	Online  int `json:"online"`
	Offline int `json:"offline"`
	Warning int `json:"warning"`
	Fault   int `json:"fault"`
	Unknown int `json:"unknown"`
	Total   int `json:"total"`
}

func (s *TypeSummary) add(class StatusClass) {
	switch class {
	case StatusClassOnline:
		s.Online++
	case StatusClassOffline:
		s.Offline++
	case StatusClassWarning:
		s.Warning++
	case StatusClassFault:
		s.Fault++
	default:
		s.Unknown++
	}
	s.Total++
}

// StatusSummary is the dashboard view of the equipment collection
type StatusSummary struct {
	ByType         map[EquipmentType]*TypeSummary `json:"byType"`
	Total          int                            `json:"total"`
	MaintenanceDue int                            `json:"maintenanceDue"`
	GeneratedAt    time.Time                      `json:"generatedAt"`
}

// SummarizeEquipment partitions items by type and counts each by status class.
// Every item is counted exactly once; statuses outside their type's vocabulary
// are counted as unknown rather than dropped.
func SummarizeEquipment(items []*Equipment, now time.Time) *StatusSummary {
	summary := &StatusSummary{
		ByType:      make(map[EquipmentType]*TypeSummary, len(EquipmentTypes)),
		GeneratedAt: now,
	}
	for _, t := range EquipmentTypes {
		summary.ByType[t] = &TypeSummary{}
	}

	for _, e := range items {
		bucket, ok := summary.ByType[e.Type]
		if !ok {
			bucket = &TypeSummary{}
			summary.ByType[e.Type] = bucket
		}
		bucket.add(ClassifyStatus(e.Type, e.Status))
		summary.Total++
		if e.MaintenanceDue(now, MaintenanceWindow) {
			summary.MaintenanceDue++
		}
	}
	return summary
}
