package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// dbExecutor is an interface that both *sqlx.DB and *sqlx.Tx implement
// This allows repositories to work with either a database connection or a transaction
type dbExecutor interface {
	sqlx.Queryer
	sqlx.Execer
	sqlx.Preparer
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// uniqueViolation is the PostgreSQL error code for unique_violation
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// withTx runs fn inside a transaction, committing only if fn succeeds
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// getOne loads a single row into dest, mapping sql.ErrNoRows to ErrNotFound
func getOne(ctx context.Context, db dbExecutor, dest interface{}, entity string, id int64, query string) error {
	err := db.GetContext(ctx, dest, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NotFoundf(entity, id)
		}
		return fmt.Errorf("failed to get %s: %w", entity, err)
	}
	return nil
}

// insertReturningID runs a named INSERT ... RETURNING id and stores the id in dest
func insertReturningID(ctx context.Context, db dbExecutor, query string, arg interface{}, dest *int64) error {
	stmt, err := db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	return stmt.GetContext(ctx, dest, arg)
}
