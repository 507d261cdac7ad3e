package ports

import (
	"context"

	"github.com/hsdfat8/gridops/internal/domain/models"
)

// GridService defines the core business operations of the grid dashboard.
// This is the primary port used by the HTTP adapter.
type GridService interface {
	// Register creates an active user with a hashed password
	// Register creates an operator account; roles change only through UpdateUser
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)

	// Authenticate checks credentials and stamps the last login time
	Authenticate(ctx context.Context, username, password string) (*models.User, error)

	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error)
	UpdateUser(ctx context.Context, actor models.Actor, id int64, patch models.UserPatch) (*models.User, error)

	ListEquipment(ctx context.Context, filter EquipmentFilter) ([]*models.Equipment, error)
	GetEquipment(ctx context.Context, id int64) (*models.Equipment, error)
	CreateEquipment(ctx context.Context, actor models.Actor, equipment *models.Equipment) (*models.Equipment, error)
	UpdateEquipment(ctx context.Context, actor models.Actor, id int64, patch models.EquipmentPatch) (*models.Equipment, error)
	DeleteEquipment(ctx context.Context, actor models.Actor, id int64) error

	// EquipmentSummary returns per-type status counts and the maintenance-due count
	EquipmentSummary(ctx context.Context) (*models.StatusSummary, error)

	ListPermits(ctx context.Context, filter PermitFilter) ([]*models.WorkPermit, error)
	GetPermit(ctx context.Context, id int64) (*models.WorkPermit, error)
	CreatePermit(ctx context.Context, actor models.Actor, permit *models.WorkPermit) (*models.WorkPermit, error)

	// UpdatePermit applies a patch, enforcing the permit workflow
	UpdatePermit(ctx context.Context, actor models.Actor, id int64, patch models.PermitPatch) (*models.WorkPermit, error)

	ListAlerts(ctx context.Context, filter AlertFilter) ([]*models.Alert, error)
	GetAlert(ctx context.Context, id int64) (*models.Alert, error)
	CreateAlert(ctx context.Context, actor models.Actor, alert *models.Alert) (*models.Alert, error)
	UpdateAlert(ctx context.Context, actor models.Actor, id int64, patch models.AlertPatch) (*models.Alert, error)

	// ResolveAlert resolves an active alert; an already resolved alert is returned unchanged with alreadyResolved set
	ResolveAlert(ctx context.Context, actor models.Actor, id int64, notes string) (alert *models.Alert, alreadyResolved bool, err error)
	IgnoreAlert(ctx context.Context, actor models.Actor, id int64, notes string) (*models.Alert, error)

	ListActivityLogs(ctx context.Context, limit int) ([]*models.ActivityLog, error)
	RecordActivity(ctx context.Context, entry *models.ActivityLog) (*models.ActivityLog, error)

	ListEnergyReadings(ctx context.Context, filter EnergyFilter) ([]*models.EnergyReading, error)
	RecordEnergyReading(ctx context.Context, reading *models.EnergyReading) (*models.EnergyReading, error)

	// AnalyzeLogs never fails on AI errors; it returns the degraded fallback instead
	AnalyzeLogs(ctx context.Context) (*LogAnalysisReport, error)
	RecommendEnergy(ctx context.Context) (*EnergyReport, error)
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username   string
	Password   string
	FullName   string
	Email      string
	Department string
}

// LogAnalysisReport is the log analysis together with the logs it was built from
type LogAnalysisReport struct {
	Logs     []*models.ActivityLog
	Analysis models.LogAnalysis
	Degraded bool
}

// EnergyReport is the energy recommendations together with the readings used
type EnergyReport struct {
	Readings        []*models.EnergyReading
	Recommendations models.EnergyRecommendations
	Degraded        bool
}
