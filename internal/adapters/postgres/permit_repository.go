package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectPermits = `
	SELECT id, permit_number, title, description, status, start_time, end_time,
	       location, requested_by_id, approved_by_id, equipment_ids, safety_measures,
	       created_at, updated_at
	FROM work_permits
`

// permitRow carries the array columns that models.WorkPermit keeps as plain slices
type permitRow struct {
	models.WorkPermit
	EquipmentIDs   pq.Int64Array  `db:"equipment_ids"`
	SafetyMeasures pq.StringArray `db:"safety_measures"`
}

func toPermitRow(p *models.WorkPermit) *permitRow {
	row := &permitRow{WorkPermit: *p}
	row.EquipmentIDs = pq.Int64Array(p.EquipmentIDs)
	row.SafetyMeasures = pq.StringArray(p.SafetyMeasures)
	if row.EquipmentIDs == nil {
		row.EquipmentIDs = pq.Int64Array{}
	}
	if row.SafetyMeasures == nil {
		row.SafetyMeasures = pq.StringArray{}
	}
	return row
}

func (row *permitRow) toModel() *models.WorkPermit {
	p := row.WorkPermit
	p.EquipmentIDs = []int64(row.EquipmentIDs)
	p.SafetyMeasures = []string(row.SafetyMeasures)
	if p.EquipmentIDs == nil {
		p.EquipmentIDs = []int64{}
	}
	if p.SafetyMeasures == nil {
		p.SafetyMeasures = []string{}
	}
	return &p
}

// PermitRepository implements ports.PermitRepository using PostgreSQL
type PermitRepository struct {
	db *sqlx.DB
}

var _ ports.PermitRepository = (*PermitRepository)(nil)

// NewPermitRepository creates a new PostgreSQL work permit repository
func NewPermitRepository(db *sqlx.DB) *PermitRepository {
	return &PermitRepository{db: db}
}

// GetByID retrieves a permit by id
func (r *PermitRepository) GetByID(ctx context.Context, id int64) (*models.WorkPermit, error) {
	var row permitRow
	if err := getOne(ctx, r.db, &row, "work permit", id, selectPermits+` WHERE id = $1`); err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// List retrieves permits matching filter in insertion order
func (r *PermitRepository) List(ctx context.Context, filter ports.PermitFilter) ([]*models.WorkPermit, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.RequestedByID != 0 {
		args = append(args, filter.RequestedByID)
		conditions = append(conditions, fmt.Sprintf("requested_by_id = $%d", len(args)))
	}

	query := selectPermits
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	var rows []permitRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list work permits: %w", err)
	}
	permits := make([]*models.WorkPermit, 0, len(rows))
	for i := range rows {
		permits = append(permits, rows[i].toModel())
	}
	return permits, nil
}

// Create adds a new permit; the permit number must be unique
func (r *PermitRepository) Create(ctx context.Context, permit *models.WorkPermit) error {
	query := `
		INSERT INTO work_permits (
			permit_number, title, description, status, start_time, end_time,
			location, requested_by_id, approved_by_id, equipment_ids, safety_measures,
			created_at, updated_at
		) VALUES (
			:permit_number, :title, :description, :status, :start_time, :end_time,
			:location, :requested_by_id, :approved_by_id, :equipment_ids, :safety_measures,
			:created_at, :updated_at
		) RETURNING id
	`
	if err := insertReturningID(ctx, r.db, query, toPermitRow(permit), &permit.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("permit number %q: %w", permit.PermitNumber, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create work permit: %w", err)
	}
	return nil
}

// Update applies fn to the locked permit row. The row lock serialises
// concurrent approve/reject requests so only one decision wins.
func (r *PermitRepository) Update(ctx context.Context, id int64, fn func(*models.WorkPermit) error) (*models.WorkPermit, error) {
	var updated *models.WorkPermit
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var row permitRow
		if err := getOne(ctx, tx, &row, "work permit", id, selectPermits+` WHERE id = $1 FOR UPDATE`); err != nil {
			return err
		}
		permit := row.toModel()
		if err := fn(permit); err != nil {
			return err
		}
		query := `
			UPDATE work_permits
			SET title = :title,
			    description = :description,
			    status = :status,
			    start_time = :start_time,
			    end_time = :end_time,
			    location = :location,
			    approved_by_id = :approved_by_id,
			    equipment_ids = :equipment_ids,
			    safety_measures = :safety_measures,
			    updated_at = :updated_at
			WHERE id = :id
		`
		if _, err := tx.NamedExecContext(ctx, query, toPermitRow(permit)); err != nil {
			return fmt.Errorf("failed to update work permit: %w", err)
		}
		updated = permit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
