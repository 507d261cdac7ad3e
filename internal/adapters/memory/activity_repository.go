package memory

import (
	"context"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// InMemoryActivityLogRepository is an append-only in-memory activity log
type InMemoryActivityLogRepository struct {
	logs *table[models.ActivityLog]
}

// NewInMemoryActivityLogRepository creates a new in-memory activity log repository
func NewInMemoryActivityLogRepository() *InMemoryActivityLogRepository {
	return &InMemoryActivityLogRepository{
		logs: newTable(func(l *models.ActivityLog) *models.ActivityLog {
			out := *l
			out.UserID = copyInt64(l.UserID)
			out.EntityID = copyInt64(l.EntityID)
			return &out
		}),
	}
}

func (r *InMemoryActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	return r.logs.insert(entry, func(l *models.ActivityLog, id int64) { l.ID = id }, nil)
}

func (r *InMemoryActivityLogRepository) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	return r.logs.newest(limit, nil), nil
}

// InMemoryEnergyReadingRepository is an append-only in-memory reading store
type InMemoryEnergyReadingRepository struct {
	readings *table[models.EnergyReading]
}

// NewInMemoryEnergyReadingRepository creates a new in-memory energy reading repository
func NewInMemoryEnergyReadingRepository() *InMemoryEnergyReadingRepository {
	return &InMemoryEnergyReadingRepository{
		readings: newTable(func(r *models.EnergyReading) *models.EnergyReading {
			out := *r
			return &out
		}),
	}
}

func (r *InMemoryEnergyReadingRepository) Append(ctx context.Context, reading *models.EnergyReading) error {
	return r.readings.insert(reading, func(e *models.EnergyReading, id int64) { e.ID = id }, nil)
}

func (r *InMemoryEnergyReadingRepository) List(ctx context.Context, filter ports.EnergyFilter) ([]*models.EnergyReading, error) {
	return r.readings.newest(filter.Limit, func(e *models.EnergyReading) bool {
		if filter.EquipmentID != 0 && e.EquipmentID != filter.EquipmentID {
			return false
		}
		return filter.Since == nil || !e.Timestamp.Before(*filter.Since)
	}), nil
}
