package http

import (
	"time"

	"github.com/hsdfat8/gridops/internal/domain/models"
)

// ProblemDetails represents an error response following RFC 7807
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,max=64"`
	Password   string `json:"password" binding:"required"`
	FullName   string `json:"fullName"`
	Email      string `json:"email" binding:"omitempty,email"`
	Department string `json:"department"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserPatchRequest holds the admin-editable user fields
type UserPatchRequest struct {
	FullName   *string      `json:"fullName"`
	Email      *string      `json:"email"`
	Department *string      `json:"department"`
	Role       *models.Role `json:"role"`
	IsActive   *bool        `json:"isActive"`
}

// EquipmentRequest represents an equipment creation request
type EquipmentRequest struct {
	Name                string                 `json:"name" binding:"required"`
	Type                models.EquipmentType   `json:"type" binding:"required"`
	Location            string                 `json:"location"`
	Voltage             float64                `json:"voltage"`
	Status              models.EquipmentStatus `json:"status"`
	Specifications      models.Specifications  `json:"specifications"`
	InstallationDate    *time.Time             `json:"installationDate"`
	LastMaintenanceDate *time.Time             `json:"lastMaintenanceDate"`
	NextMaintenanceDate *time.Time             `json:"nextMaintenanceDate"`
	ManufacturerID      *int64                 `json:"manufacturerId"`
	SerialNumber        string                 `json:"serialNumber"`
	Notes               string                 `json:"notes"`
}

func (r EquipmentRequest) toModel() *models.Equipment {
	return &models.Equipment{
		Name:                r.Name,
		Type:                r.Type,
		Location:            r.Location,
		Voltage:             r.Voltage,
		Status:              r.Status,
		Specifications:      r.Specifications,
		InstallationDate:    r.InstallationDate,
		LastMaintenanceDate: r.LastMaintenanceDate,
		NextMaintenanceDate: r.NextMaintenanceDate,
		ManufacturerID:      r.ManufacturerID,
		SerialNumber:        r.SerialNumber,
		Notes:               r.Notes,
	}
}

// EquipmentPatchRequest holds a partial equipment update
type EquipmentPatchRequest struct {
	Name                *string                 `json:"name"`
	Type                *models.EquipmentType   `json:"type"`
	Location            *string                 `json:"location"`
	Voltage             *float64                `json:"voltage"`
	Status              *models.EquipmentStatus `json:"status"`
	Specifications      models.Specifications   `json:"specifications"`
	InstallationDate    *time.Time              `json:"installationDate"`
	LastMaintenanceDate *time.Time              `json:"lastMaintenanceDate"`
	NextMaintenanceDate *time.Time              `json:"nextMaintenanceDate"`
	ManufacturerID      *int64                  `json:"manufacturerId"`
	SerialNumber        *string                 `json:"serialNumber"`
	Notes               *string                 `json:"notes"`
}

// PermitRequest represents a work permit request
type PermitRequest struct {
	Title          string              `json:"title" binding:"required"`
	Description    string              `json:"description"`
	Status         models.PermitStatus `json:"status"`
	StartTime      time.Time           `json:"startTime" binding:"required"`
	EndTime        time.Time           `json:"endTime" binding:"required"`
	Location       string              `json:"location"`
	RequestedByID  int64               `json:"requestedById"`
	ApprovedByID   *int64              `json:"approvedById"`
	EquipmentIDs   []int64             `json:"equipmentIds"`
	SafetyMeasures []string            `json:"safetyMeasures"`
}

func (r PermitRequest) toModel() *models.WorkPermit {
	return &models.WorkPermit{
		Title:          r.Title,
		Description:    r.Description,
		Status:         r.Status,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Location:       r.Location,
		RequestedByID:  r.RequestedByID,
		ApprovedByID:   r.ApprovedByID,
		EquipmentIDs:   r.EquipmentIDs,
		SafetyMeasures: r.SafetyMeasures,
	}
}

// PermitPatchRequest holds a partial permit update or workflow transition
type PermitPatchRequest struct {
	Title          *string              `json:"title"`
	Description    *string              `json:"description"`
	Status         *models.PermitStatus `json:"status"`
	StartTime      *time.Time           `json:"startTime"`
	EndTime        *time.Time           `json:"endTime"`
	Location       *string              `json:"location"`
	ApprovedByID   *int64               `json:"approvedById"`
	EquipmentIDs   []int64              `json:"equipmentIds"`
	SafetyMeasures []string             `json:"safetyMeasures"`
}

// AlertRequest represents an alert creation request
type AlertRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Severity    models.Severity    `json:"severity"`
	Status      models.AlertStatus `json:"status"`
	EquipmentID *int64             `json:"equipmentId"`
}

func (r AlertRequest) toModel() *models.Alert {
	return &models.Alert{
		Title:       r.Title,
		Description: r.Description,
		Severity:    r.Severity,
		Status:      r.Status,
		EquipmentID: r.EquipmentID,
	}
}

// AlertPatchRequest holds the alert fields editable outside the lifecycle
type AlertPatchRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Severity    *models.Severity `json:"severity"`
	EquipmentID *int64           `json:"equipmentId"`
	Notes       *string          `json:"notes"`
}

// AlertActionRequest carries the optional notes of a resolve or ignore
type AlertActionRequest struct {
	Notes string `json:"notes"`
}

// ActivityLogRequest represents a client-recorded activity entry
type ActivityLogRequest struct {
	Action      string          `json:"action" binding:"required"`
	Description string          `json:"description"`
	EntityType  string          `json:"entityType"`
	EntityID    *int64          `json:"entityId"`
	Severity    models.Severity `json:"severity"`
}

// EnergyReadingRequest represents a meter reading submission
type EnergyReadingRequest struct {
	EquipmentID int64   `json:"equipmentId" binding:"required"`
	Value       float64 `json:"value"`
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	Frequency   float64 `json:"frequency"`
	PowerFactor float64 `json:"powerFactor"`
	Source      string  `json:"source"`
}

func (r EnergyReadingRequest) toModel() *models.EnergyReading {
	return &models.EnergyReading{
		EquipmentID: r.EquipmentID,
		Value:       r.Value,
		Voltage:     r.Voltage,
		Current:     r.Current,
		Frequency:   r.Frequency,
		PowerFactor: r.PowerFactor,
		Source:      r.Source,
	}
}

// LogAnalysisResponse is the body of GET /api/logs/analysis
type LogAnalysisResponse struct {
	Logs     []*models.ActivityLog `json:"logs"`
	Analysis models.LogAnalysis    `json:"analysis"`
	Degraded bool                  `json:"degraded"`
}

// EnergyRecommendationsResponse is the body of GET /api/recommendations/energy
type EnergyRecommendationsResponse struct {
	Readings        []*models.EnergyReading      `json:"readings"`
	Recommendations models.EnergyRecommendations `json:"recommendations"`
	Degraded        bool                         `json:"degraded"`
}
