package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/jmoiron/sqlx"
)

const selectEquipment = `
	SELECT id, name, type, location, voltage, status, specifications,
	       installation_date, last_maintenance_date, next_maintenance_date,
	       manufacturer_id, serial_number, notes, created_at, updated_at
	FROM equipment
`

// EquipmentRepository implements ports.EquipmentRepository using PostgreSQL
type EquipmentRepository struct {
	db *sqlx.DB
}

var _ ports.EquipmentRepository = (*EquipmentRepository)(nil)

// NewEquipmentRepository creates a new PostgreSQL equipment repository
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// GetByID retrieves equipment by id
func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := getOne(ctx, r.db, &equipment, "equipment", id, selectEquipment+` WHERE id = $1`); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// List retrieves equipment matching filter in insertion order
func (r *EquipmentRepository) List(ctx context.Context, filter ports.EquipmentFilter) ([]*models.Equipment, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := selectEquipment
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	items := []*models.Equipment{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return items, nil
}

// Create adds a new equipment record
func (r *EquipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	query := `
		INSERT INTO equipment (
			name, type, location, voltage, status, specifications,
			installation_date, last_maintenance_date, next_maintenance_date,
			manufacturer_id, serial_number, notes, created_at, updated_at
		) VALUES (
			:name, :type, :location, :voltage, :status, :specifications,
			:installation_date, :last_maintenance_date, :next_maintenance_date,
			:manufacturer_id, :serial_number, :notes, :created_at, :updated_at
		) RETURNING id
	`
	if err := insertReturningID(ctx, r.db, query, equipment, &equipment.ID); err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	return nil
}

// Update applies fn to the locked equipment row and writes the result back
func (r *EquipmentRepository) Update(ctx context.Context, id int64, fn func(*models.Equipment) error) (*models.Equipment, error) {
	var equipment models.Equipment
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := getOne(ctx, tx, &equipment, "equipment", id, selectEquipment+` WHERE id = $1 FOR UPDATE`); err != nil {
			return err
		}
		if err := fn(&equipment); err != nil {
			return err
		}
		query := `
			UPDATE equipment
			SET name = :name,
			    type = :type,
			    location = :location,
			    voltage = :voltage,
			    status = :status,
			    specifications = :specifications,
			    installation_date = :installation_date,
			    last_maintenance_date = :last_maintenance_date,
			    next_maintenance_date = :next_maintenance_date,
			    manufacturer_id = :manufacturer_id,
			    serial_number = :serial_number,
			    notes = :notes,
			    updated_at = :updated_at
			WHERE id = :id
		`
		if _, err := tx.NamedExecContext(ctx, query, &equipment); err != nil {
			return fmt.Errorf("failed to update equipment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

// Delete removes an equipment record
func (r *EquipmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NotFoundf("equipment", id)
	}
	return nil
}
