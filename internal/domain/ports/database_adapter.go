package ports

import (
	"context"
	"time"
)

// DatabaseType represents the type of database backend
type DatabaseType string

const (
	DatabaseTypeMemory     DatabaseType = "memory"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
	DatabaseTypeMongoDB    DatabaseType = "mongodb"
)

// DatabaseAdapter is a connected backend able to serve some or all repositories.
// Backends that do not serve a repository return nil for it.
type DatabaseAdapter interface {
	// Connect establishes a connection to the database
	Connect(ctx context.Context) error

	// Disconnect closes the database connection
	Disconnect(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// GetType returns the database type
	GetType() DatabaseType

	// Populate sets the repositories this backend serves on store
	Populate(store *Store)
}

// DatabaseConfig selects the backend for entity records and for the
// append-only activity/energy series.
type DatabaseConfig struct {
	Type           DatabaseType    `yaml:"type" json:"type"`
	TimeSeriesType DatabaseType    `yaml:"timeseries_type" json:"timeseries_type"`
	PostgresConfig *PostgresConfig `yaml:"postgres,omitempty" json:"postgres,omitempty"`
	MongoDBConfig  *MongoDBConfig  `yaml:"mongodb,omitempty" json:"mongodb,omitempty"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	User            string        `yaml:"user" json:"user"`
	Password        string        `yaml:"password" json:"password"`
	Database        string        `yaml:"database" json:"database"`
	SSLMode         string        `yaml:"ssl_mode" json:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate" json:"auto_migrate"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI             string        `yaml:"uri" json:"uri"`
	Database        string        `yaml:"database" json:"database"`
	MaxPoolSize     int           `yaml:"max_pool_size" json:"max_pool_size"`
	MinPoolSize     int           `yaml:"min_pool_size" json:"min_pool_size"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" json:"max_conn_idle_time"`
	ServerTimeout   time.Duration `yaml:"server_timeout" json:"server_timeout"`
}
