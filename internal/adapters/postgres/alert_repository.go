package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/jmoiron/sqlx"
)

const selectAlerts = `
	SELECT id, title, description, severity, status, equipment_id,
	       resolved_by_id, resolved_at, notes, timestamp
	FROM alerts
`

// AlertRepository implements ports.AlertRepository using PostgreSQL
type AlertRepository struct {
	db *sqlx.DB
}

var _ ports.AlertRepository = (*AlertRepository)(nil)

// NewAlertRepository creates a new PostgreSQL alert repository
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*models.Alert, error) {
	var alert models.Alert
	if err := getOne(ctx, r.db, &alert, "alert", id, selectAlerts+` WHERE id = $1`); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) List(ctx context.Context, filter ports.AlertFilter) ([]*models.Alert, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)))
	}

	query := selectAlerts
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	alerts := []*models.Alert{}
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (
			title, description, severity, status, equipment_id,
			resolved_by_id, resolved_at, notes, timestamp
		) VALUES (
			:title, :description, :severity, :status, :equipment_id,
			:resolved_by_id, :resolved_at, :notes, :timestamp
		) RETURNING id
	`
	if err := insertReturningID(ctx, r.db, query, alert, &alert.ID); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// Update applies fn to the locked alert row. Resolution fields are written
// together in the same statement.
func (r *AlertRepository) Update(ctx context.Context, id int64, fn func(*models.Alert) error) (*models.Alert, error) {
	var alert models.Alert
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := getOne(ctx, tx, &alert, "alert", id, selectAlerts+` WHERE id = $1 FOR UPDATE`); err != nil {
			return err
		}
		before := alert
		if err := fn(&alert); err != nil {
			return err
		}
		if alertUnchanged(&before, &alert) {
			return nil
		}
		query := `
			UPDATE alerts
			SET title = :title,
			    description = :description,
			    severity = :severity,
			    status = :status,
			    equipment_id = :equipment_id,
			    resolved_by_id = :resolved_by_id,
			    resolved_at = :resolved_at,
			    notes = :notes
			WHERE id = :id
		`
		if _, err := tx.NamedExecContext(ctx, query, &alert); err != nil {
			return fmt.Errorf("failed to update alert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// alertUnchanged reports whether fn left the row as loaded, as a repeated resolve does
func alertUnchanged(before, after *models.Alert) bool {
	return before.Title == after.Title &&
		before.Description == after.Description &&
		before.Severity == after.Severity &&
		before.Status == after.Status &&
		before.EquipmentID == after.EquipmentID &&
		before.ResolvedByID == after.ResolvedByID &&
		before.ResolvedAt == after.ResolvedAt &&
		before.Notes == after.Notes
}
