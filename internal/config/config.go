package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Session  SessionConfig
	Admin    AdminConfig
	AI       AIConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	EnableH2C       bool
}

// DatabaseConfig selects and configures the entity store backends
type DatabaseConfig struct {
	Type           string // "memory", "postgres"
	TimeSeriesType string // "", "memory", "postgres", "mongodb"; empty follows Type
	Postgres       PostgresConfig
	MongoDB        MongoDBConfig
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

// MongoDBConfig holds MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	MaxPoolSize     int
	MinPoolSize     int
	MaxConnIdleTime time.Duration
	ServerTimeout   time.Duration
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Enabled    bool
	SummaryTTL time.Duration
	Redis      RedisConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// AdminConfig names the administrator created at startup. An empty
// password disables the bootstrap.
type AdminConfig struct {
	Username string
	Password string
}

// AIConfig holds the LLM advisor configuration
type AIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	SampleSize int // logs/readings sent per analysis
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string // "debug", "info", "warn", "error"
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load loads configuration from .env, an optional config file and environment variables
func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/gridops")
	}

	// Read environment variables
	v.SetEnvPrefix("GRIDOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known variables shared with the dashboard deployment
	_ = v.BindEnv("ai.apiKey", "GRIDOPS_AI_APIKEY", "OPENAI_API_KEY")
	_ = v.BindEnv("session.secret", "GRIDOPS_SESSION_SECRET", "SESSION_SECRET")
	_ = v.BindEnv("env", "GRIDOPS_ENV", "NODE_ENV")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.IsProduction() {
		config.Session.Secure = true
		if config.Session.Secret == defaultSessionSecret {
			return nil, fmt.Errorf("session secret must be set in production")
		}
	}

	return &config, nil
}

const defaultSessionSecret = "gridops-dev-secret"

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.readTimeout", "30s")
	v.SetDefault("server.writeTimeout", "60s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.enableH2C", false)

	// Database defaults
	v.SetDefault("database.type", "memory")
	v.SetDefault("database.timeSeriesType", "")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "gridops")
	v.SetDefault("database.postgres.password", "gridops")
	v.SetDefault("database.postgres.database", "gridops")
	v.SetDefault("database.postgres.sslMode", "disable")
	v.SetDefault("database.postgres.maxOpenConns", 25)
	v.SetDefault("database.postgres.maxIdleConns", 5)
	v.SetDefault("database.postgres.connMaxLifetime", "5m")
	v.SetDefault("database.postgres.connMaxIdleTime", "10m")
	v.SetDefault("database.postgres.autoMigrate", true)
	v.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongodb.database", "gridops")
	v.SetDefault("database.mongodb.maxPoolSize", 100)
	v.SetDefault("database.mongodb.minPoolSize", 0)
	v.SetDefault("database.mongodb.maxConnIdleTime", "10m")
	v.SetDefault("database.mongodb.serverTimeout", "30s")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.summaryTTL", "30s")
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	// Session defaults
	v.SetDefault("session.secret", defaultSessionSecret)
	v.SetDefault("session.cookieName", "gridops_session")
	v.SetDefault("session.maxAge", "24h")
	v.SetDefault("session.secure", false)

	// Admin bootstrap defaults
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")

	// AI defaults
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.baseURL", "https://api.openai.com")
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.maxRetries", 2)
	v.SetDefault("ai.sampleSize", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
