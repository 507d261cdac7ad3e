package ports

import (
	"context"
	"errors"
	"time"

	"github.com/hsdfat8/gridops/internal/domain/models"
)

// ErrCacheMiss is returned by CacheRepository when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username, case-insensitively
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create assigns a fresh id and stores the user
	Create(ctx context.Context, user *models.User) error

	// Update applies fn to the stored user and persists the result atomically
	Update(ctx context.Context, id int64, fn func(*models.User) error) (*models.User, error)

	// List retrieves all users in insertion order
	List(ctx context.Context) ([]*models.User, error)
}

// EquipmentFilter narrows equipment listings; zero values match everything
type EquipmentFilter struct {
	Type   models.EquipmentType
	Status models.EquipmentStatus
}

// EquipmentRepository defines the interface for equipment data access
type EquipmentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Equipment, error)
	List(ctx context.Context, filter EquipmentFilter) ([]*models.Equipment, error)
	Create(ctx context.Context, equipment *models.Equipment) error
	Update(ctx context.Context, id int64, fn func(*models.Equipment) error) (*models.Equipment, error)
	Delete(ctx context.Context, id int64) error
}

// PermitFilter narrows permit listings
type PermitFilter struct {
	Status        models.PermitStatus
	RequestedByID int64
}

// PermitRepository defines the interface for work permit data access
type PermitRepository interface {
	GetByID(ctx context.Context, id int64) (*models.WorkPermit, error)
	List(ctx context.Context, filter PermitFilter) ([]*models.WorkPermit, error)

	// Create stores the permit; the permit number must be unique
	Create(ctx context.Context, permit *models.WorkPermit) error

	// Update applies fn under the record lock; the stored permit is unchanged if fn fails
	Update(ctx context.Context, id int64, fn func(*models.WorkPermit) error) (*models.WorkPermit, error)
}

// AlertFilter narrows alert listings
type AlertFilter struct {
	Status   models.AlertStatus
	Severity models.Severity
}

// AlertRepository defines the interface for alert data access
type AlertRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]*models.Alert, error)
	Create(ctx context.Context, alert *models.Alert) error
	Update(ctx context.Context, id int64, fn func(*models.Alert) error) (*models.Alert, error)
}

// ActivityLogRepository is an append-only store of activity entries
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *models.ActivityLog) error

	// List returns at most limit entries, newest first
	List(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

// EnergyFilter narrows reading listings
type EnergyFilter struct {
	EquipmentID int64
	Since       *time.Time
	Limit       int
}

// EnergyReadingRepository is an append-only store of readings
type EnergyReadingRepository interface {
	Append(ctx context.Context, reading *models.EnergyReading) error

	// List returns readings matching filter, newest first
	List(ctx context.Context, filter EnergyFilter) ([]*models.EnergyReading, error)
}

// CacheRepository defines the interface for caching (optional)
type CacheRepository interface {
	// Get returns ErrCacheMiss when key is absent
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store bundles the repositories of every entity type
type Store struct {
	Users          UserRepository
	Equipment      EquipmentRepository
	Permits        PermitRepository
	Alerts         AlertRepository
	ActivityLogs   ActivityLogRepository
	EnergyReadings EnergyReadingRepository
}
