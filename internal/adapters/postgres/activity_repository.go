package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// ActivityLogRepository implements ports.ActivityLogRepository using PostgreSQL
type ActivityLogRepository struct {
	db dbExecutor
}

var _ ports.ActivityLogRepository = (*ActivityLogRepository)(nil)

// NewActivityLogRepository creates a new PostgreSQL activity log repository
func NewActivityLogRepository(db dbExecutor) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Append records an activity entry
func (r *ActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (
			action, description, user_id, entity_type, entity_id, severity, timestamp
		) VALUES (
			:action, :description, :user_id, :entity_type, :entity_id, :severity, :timestamp
		) RETURNING id
	`
	if err := insertReturningID(ctx, r.db, query, entry, &entry.ID); err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}

// List retrieves the most recent entries, newest first
func (r *ActivityLogRepository) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, action, description, user_id, entity_type, entity_id, severity, timestamp
		FROM activity_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`

	logs := []*models.ActivityLog{}
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return logs, nil
}

// EnergyReadingRepository implements ports.EnergyReadingRepository using PostgreSQL
type EnergyReadingRepository struct {
	db dbExecutor
}

var _ ports.EnergyReadingRepository = (*EnergyReadingRepository)(nil)

// NewEnergyReadingRepository creates a new PostgreSQL energy reading repository
func NewEnergyReadingRepository(db dbExecutor) *EnergyReadingRepository {
	return &EnergyReadingRepository{db: db}
}

// Append records a reading
func (r *EnergyReadingRepository) Append(ctx context.Context, reading *models.EnergyReading) error {
	query := `
		INSERT INTO energy_readings (
			equipment_id, value, voltage, current, frequency, power_factor, source, timestamp
		) VALUES (
			:equipment_id, :value, :voltage, :current, :frequency, :power_factor, :source, :timestamp
		) RETURNING id
	`
	if err := insertReturningID(ctx, r.db, query, reading, &reading.ID); err != nil {
		return fmt.Errorf("failed to append energy reading: %w", err)
	}
	return nil
}

// List retrieves readings matching filter, newest first
func (r *EnergyReadingRepository) List(ctx context.Context, filter ports.EnergyFilter) ([]*models.EnergyReading, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.EquipmentID != 0 {
		args = append(args, filter.EquipmentID)
		conditions = append(conditions, fmt.Sprintf("equipment_id = $%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", len(args)))
	}

	query := `
		SELECT id, equipment_id, value, voltage, current, frequency, power_factor, source, timestamp
		FROM energy_readings
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	readings := []*models.EnergyReading{}
	if err := r.db.SelectContext(ctx, &readings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list energy readings: %w", err)
	}
	return readings, nil
}
