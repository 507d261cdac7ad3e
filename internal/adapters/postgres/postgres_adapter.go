package postgres

import (
	"context"
	"fmt"

	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresAdapter implements the DatabaseAdapter interface for PostgreSQL.
// It serves every repository of the store.
type PostgresAdapter struct {
	db     *sqlx.DB
	config *ports.PostgresConfig
}

var _ ports.DatabaseAdapter = (*PostgresAdapter)(nil)

// NewPostgresAdapter creates a new PostgreSQL database adapter
func NewPostgresAdapter(config *ports.PostgresConfig) *PostgresAdapter {
	return &PostgresAdapter{
		config: config,
	}
}

// NewPostgresAdapterWithDB wraps an existing connection
func NewPostgresAdapterWithDB(db *sqlx.DB, config *ports.PostgresConfig) *PostgresAdapter {
	return &PostgresAdapter{db: db, config: config}
}

// DSN returns the lib/pq connection string for the configuration
func (a *PostgresAdapter) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		a.config.Host,
		a.config.Port,
		a.config.User,
		a.config.Password,
		a.config.Database,
		a.config.SSLMode,
	)
}

// Connect establishes a connection to the PostgreSQL database and applies
// the schema when auto migration is enabled
func (a *PostgresAdapter) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", a.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(a.config.MaxOpenConns)
	db.SetMaxIdleConns(a.config.MaxIdleConns)
	db.SetConnMaxLifetime(a.config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(a.config.ConnMaxIdleTime)

	a.db = db

	if a.config.AutoMigrate {
		if err := NewMigrator(db).Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate postgres schema: %w", err)
		}
	}
	return nil
}

// Disconnect closes the database connection
func (a *PostgresAdapter) Disconnect(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (a *PostgresAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("database not connected")
	}
	return a.db.PingContext(ctx)
}

// GetType returns the database type
func (a *PostgresAdapter) GetType() ports.DatabaseType {
	return ports.DatabaseTypePostgreSQL
}

// Populate sets every repository of store to its PostgreSQL implementation
func (a *PostgresAdapter) Populate(store *ports.Store) {
	store.Users = NewUserRepository(a.db)
	store.Equipment = NewEquipmentRepository(a.db)
	store.Permits = NewPermitRepository(a.db)
	store.Alerts = NewAlertRepository(a.db)
	store.ActivityLogs = NewActivityLogRepository(a.db)
	store.EnergyReadings = NewEnergyReadingRepository(a.db)
}

// HealthCheck performs a health check on the database
func (a *PostgresAdapter) HealthCheck(ctx context.Context) error {
	if err := a.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	// Test a simple query
	var result int
	err := a.db.GetContext(ctx, &result, "SELECT 1")
	if err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}

	return nil
}
