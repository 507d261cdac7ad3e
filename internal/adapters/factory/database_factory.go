package factory

import (
	"context"
	"fmt"

	"github.com/hsdfat8/gridops/internal/adapters/memory"
	"github.com/hsdfat8/gridops/internal/adapters/mongodb"
	"github.com/hsdfat8/gridops/internal/adapters/postgres"
	"github.com/hsdfat8/gridops/internal/config"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/observability"
)

// DatabaseAdapterFactory creates database adapters based on configuration
type DatabaseAdapterFactory struct {
	log observability.Logger
}

// NewDatabaseAdapterFactory creates a new database adapter factory
func NewDatabaseAdapterFactory() *DatabaseAdapterFactory {
	return &DatabaseAdapterFactory{log: observability.New("factory", "")}
}

// FromConfig converts the loaded application settings into adapter configuration
func FromConfig(cfg config.DatabaseConfig) *ports.DatabaseConfig {
	pg := cfg.Postgres
	mg := cfg.MongoDB
	return &ports.DatabaseConfig{
		Type:           ports.DatabaseType(cfg.Type),
		TimeSeriesType: ports.DatabaseType(cfg.TimeSeriesType),
		PostgresConfig: &ports.PostgresConfig{
			Host:            pg.Host,
			Port:            pg.Port,
			User:            pg.User,
			Password:        pg.Password,
			Database:        pg.Database,
			SSLMode:         pg.SSLMode,
			MaxOpenConns:    pg.MaxOpenConns,
			MaxIdleConns:    pg.MaxIdleConns,
			ConnMaxLifetime: pg.ConnMaxLifetime,
			ConnMaxIdleTime: pg.ConnMaxIdleTime,
			AutoMigrate:     pg.AutoMigrate,
		},
		MongoDBConfig: &ports.MongoDBConfig{
			URI:             mg.URI,
			Database:        mg.Database,
			MaxPoolSize:     mg.MaxPoolSize,
			MinPoolSize:     mg.MinPoolSize,
			MaxConnIdleTime: mg.MaxConnIdleTime,
			ServerTimeout:   mg.ServerTimeout,
		},
	}
}

// CreateAdapter creates a database adapter for the given type. The memory
// backend has no adapter and returns nil.
func (f *DatabaseAdapterFactory) CreateAdapter(dbType ports.DatabaseType, config *ports.DatabaseConfig) (ports.DatabaseAdapter, error) {
	if config == nil {
		return nil, fmt.Errorf("database configuration is nil")
	}

	switch dbType {
	case "", ports.DatabaseTypeMemory:
		return nil, nil

	case ports.DatabaseTypePostgreSQL:
		if config.PostgresConfig == nil {
			return nil, fmt.Errorf("postgres configuration is required")
		}
		return postgres.NewPostgresAdapter(config.PostgresConfig), nil

	case ports.DatabaseTypeMongoDB:
		if config.MongoDBConfig == nil {
			return nil, fmt.Errorf("mongodb configuration is required")
		}
		return mongodb.NewMongoDBAdapter(config.MongoDBConfig), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// BuildStore assembles the repository set: memory repositories first, then
// the entity backend, then the time-series backend. An empty time-series
// type follows the entity backend. Connected adapters are returned so the
// caller can disconnect them on shutdown.
func (f *DatabaseAdapterFactory) BuildStore(ctx context.Context, config *ports.DatabaseConfig) (*ports.Store, []ports.DatabaseAdapter, error) {
	if err := f.ValidateConfig(config); err != nil {
		return nil, nil, err
	}

	store := memory.NewStore()
	var adapters []ports.DatabaseAdapter
	connected := map[ports.DatabaseType]ports.DatabaseAdapter{}

	seriesType := config.TimeSeriesType
	if seriesType == "" {
		seriesType = config.Type
	}

	for i, dbType := range []ports.DatabaseType{config.Type, seriesType} {
		if i == 1 && (dbType == "" || dbType == ports.DatabaseTypeMemory) {
			store.ActivityLogs = memory.NewInMemoryActivityLogRepository()
			store.EnergyReadings = memory.NewInMemoryEnergyReadingRepository()
			continue
		}
		if adapter, ok := connected[dbType]; ok {
			adapter.Populate(store)
			continue
		}

		adapter, err := f.CreateAdapter(dbType, config)
		if err != nil {
			f.disconnectAll(ctx, adapters)
			return nil, nil, err
		}
		if adapter == nil {
			continue
		}
		if err := adapter.Connect(ctx); err != nil {
			f.disconnectAll(ctx, adapters)
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", dbType, err)
		}
		f.log.Infow("Database adapter connected", "type", dbType)

		adapter.Populate(store)
		connected[dbType] = adapter
		adapters = append(adapters, adapter)
	}

	return store, adapters, nil
}

func (f *DatabaseAdapterFactory) disconnectAll(ctx context.Context, adapters []ports.DatabaseAdapter) {
	for _, adapter := range adapters {
		if err := adapter.Disconnect(ctx); err != nil {
			f.log.Warnw("Failed to disconnect adapter", "type", adapter.GetType(), "error", err)
		}
	}
}

// ValidateConfig validates the database configuration
func (f *DatabaseAdapterFactory) ValidateConfig(config *ports.DatabaseConfig) error {
	if config == nil {
		return fmt.Errorf("database configuration is nil")
	}

	switch config.Type {
	case "", ports.DatabaseTypeMemory:
	case ports.DatabaseTypePostgreSQL:
		if err := f.validatePostgresConfig(config.PostgresConfig); err != nil {
			return err
		}
	case ports.DatabaseTypeMongoDB:
		return fmt.Errorf("mongodb only serves activity logs and energy readings; use it as timeseries_type")
	default:
		return fmt.Errorf("unsupported database type: %s", config.Type)
	}

	switch config.TimeSeriesType {
	case "", ports.DatabaseTypeMemory:
	case ports.DatabaseTypePostgreSQL:
		return f.validatePostgresConfig(config.PostgresConfig)
	case ports.DatabaseTypeMongoDB:
		return f.validateMongoDBConfig(config.MongoDBConfig)
	default:
		return fmt.Errorf("unsupported timeseries type: %s", config.TimeSeriesType)
	}

	return nil
}

func (f *DatabaseAdapterFactory) validatePostgresConfig(config *ports.PostgresConfig) error {
	if config == nil {
		return fmt.Errorf("postgres configuration is nil")
	}

	if config.Host == "" {
		return fmt.Errorf("postgres host is required")
	}

	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("postgres port must be between 1 and 65535")
	}

	if config.User == "" {
		return fmt.Errorf("postgres user is required")
	}

	if config.Database == "" {
		return fmt.Errorf("postgres database name is required")
	}

	if config.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be greater than 0")
	}

	if config.MaxIdleConns > config.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot be greater than max_open_conns")
	}

	return nil
}

func (f *DatabaseAdapterFactory) validateMongoDBConfig(config *ports.MongoDBConfig) error {
	if config == nil {
		return fmt.Errorf("mongodb configuration is nil")
	}

	if config.URI == "" {
		return fmt.Errorf("mongodb URI is required")
	}

	if config.Database == "" {
		return fmt.Errorf("mongodb database name is required")
	}

	if config.MaxPoolSize <= 0 {
		return fmt.Errorf("max_pool_size must be greater than 0")
	}

	if config.MinPoolSize < 0 {
		return fmt.Errorf("min_pool_size cannot be negative")
	}

	if config.MinPoolSize > config.MaxPoolSize {
		return fmt.Errorf("min_pool_size cannot be greater than max_pool_size")
	}

	return nil
}
