package memory

import (
	"context"
	"fmt"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

var (
	_ ports.UserRepository          = (*InMemoryUserRepository)(nil)
	_ ports.EquipmentRepository     = (*InMemoryEquipmentRepository)(nil)
	_ ports.PermitRepository        = (*InMemoryPermitRepository)(nil)
	_ ports.AlertRepository         = (*InMemoryAlertRepository)(nil)
	_ ports.ActivityLogRepository   = (*InMemoryActivityLogRepository)(nil)
	_ ports.EnergyReadingRepository = (*InMemoryEnergyReadingRepository)(nil)
)

// NewStore creates a store whose repositories all live in process memory
func NewStore() *ports.Store {
	return &ports.Store{
		Users:          NewInMemoryUserRepository(),
		Equipment:      NewInMemoryEquipmentRepository(),
		Permits:        NewInMemoryPermitRepository(),
		Alerts:         NewInMemoryAlertRepository(),
		ActivityLogs:   NewInMemoryActivityLogRepository(),
		EnergyReadings: NewInMemoryEnergyReadingRepository(),
	}
}

// InMemoryUserRepository is an in-memory implementation of ports.UserRepository
type InMemoryUserRepository struct {
	users *table[models.User]
}

// NewInMemoryUserRepository creates a new in-memory user repository
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: newTable(cloneUser)}
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.LastLogin = copyTime(u.LastLogin)
	return &out
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := r.users.get(id); ok {
		return u, nil
	}
	return nil, models.NotFoundf("user", id)
}

func (r *InMemoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	key := models.NormalizeUsername(username)
	found := r.users.list(func(u *models.User) bool {
		return models.NormalizeUsername(u.Username) == key
	})
	if len(found) == 0 {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
	}
	return found[0], nil
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	key := models.NormalizeUsername(user.Username)
	err := r.users.insert(user, func(u *models.User, id int64) { u.ID = id }, func(existing *models.User) bool {
		return models.NormalizeUsername(existing.Username) == key
	})
	if err != nil {
		return fmt.Errorf("username %q: %w", user.Username, err)
	}
	return nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, id int64, fn func(*models.User) error) (*models.User, error) {
	u, found, err := r.users.update(id, fn)
	if !found {
		return nil, models.NotFoundf("user", id)
	}
	return u, err
}

func (r *InMemoryUserRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.users.list(nil), nil
}

// InMemoryEquipmentRepository is an in-memory implementation of ports.EquipmentRepository
type InMemoryEquipmentRepository struct {
	equipment *table[models.Equipment]
}

// NewInMemoryEquipmentRepository creates a new in-memory equipment repository
func NewInMemoryEquipmentRepository() *InMemoryEquipmentRepository {
	return &InMemoryEquipmentRepository{equipment: newTable(cloneEquipment)}
}

func cloneEquipment(e *models.Equipment) *models.Equipment {
	out := *e
	out.Specifications = e.Specifications.Clone()
	out.InstallationDate = copyTime(e.InstallationDate)
	out.LastMaintenanceDate = copyTime(e.LastMaintenanceDate)
	out.NextMaintenanceDate = copyTime(e.NextMaintenanceDate)
	out.ManufacturerID = copyInt64(e.ManufacturerID)
	return &out
}

func (r *InMemoryEquipmentRepository) GetByID(ctx context.Context, id int64) (*models.Equipment, error) {
	if e, ok := r.equipment.get(id); ok {
		return e, nil
	}
	return nil, models.NotFoundf("equipment", id)
}

func (r *InMemoryEquipmentRepository) List(ctx context.Context, filter ports.EquipmentFilter) ([]*models.Equipment, error) {
	return r.equipment.list(func(e *models.Equipment) bool {
		return (filter.Type == "" || e.Type == filter.Type) &&
			(filter.Status == "" || e.Status == filter.Status)
	}), nil
}

func (r *InMemoryEquipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	return r.equipment.insert(equipment, func(e *models.Equipment, id int64) { e.ID = id }, nil)
}

func (r *InMemoryEquipmentRepository) Update(ctx context.Context, id int64, fn func(*models.Equipment) error) (*models.Equipment, error) {
	e, found, err := r.equipment.update(id, fn)
	if !found {
		return nil, models.NotFoundf("equipment", id)
	}
	return e, err
}

func (r *InMemoryEquipmentRepository) Delete(ctx context.Context, id int64) error {
	if !r.equipment.remove(id) {
		return models.NotFoundf("equipment", id)
	}
	return nil
}

// InMemoryPermitRepository is an in-memory implementation of ports.PermitRepository
type InMemoryPermitRepository struct {
	permits *table[models.WorkPermit]
}

// NewInMemoryPermitRepository creates a new in-memory permit repository
func NewInMemoryPermitRepository() *InMemoryPermitRepository {
	return &InMemoryPermitRepository{permits: newTable((*models.WorkPermit).Clone)}
}

func (r *InMemoryPermitRepository) GetByID(ctx context.Context, id int64) (*models.WorkPermit, error) {
	if p, ok := r.permits.get(id); ok {
		return p, nil
	}
	return nil, models.NotFoundf("work permit", id)
}

func (r *InMemoryPermitRepository) List(ctx context.Context, filter ports.PermitFilter) ([]*models.WorkPermit, error) {
	return r.permits.list(func(p *models.WorkPermit) bool {
		return (filter.Status == "" || p.Status == filter.Status) &&
			(filter.RequestedByID == 0 || p.RequestedByID == filter.RequestedByID)
	}), nil
}

func (r *InMemoryPermitRepository) Create(ctx context.Context, permit *models.WorkPermit) error {
	err := r.permits.insert(permit, func(p *models.WorkPermit, id int64) { p.ID = id }, func(existing *models.WorkPermit) bool {
		return existing.PermitNumber == permit.PermitNumber
	})
	if err != nil {
		return fmt.Errorf("permit number %q: %w", permit.PermitNumber, err)
	}
	return nil
}

func (r *InMemoryPermitRepository) Update(ctx context.Context, id int64, fn func(*models.WorkPermit) error) (*models.WorkPermit, error) {
	p, found, err := r.permits.update(id, fn)
	if !found {
		return nil, models.NotFoundf("work permit", id)
	}
	return p, err
}

// InMemoryAlertRepository is an in-memory implementation of ports.AlertRepository
type InMemoryAlertRepository struct {
	alerts *table[models.Alert]
}

// NewInMemoryAlertRepository creates a new in-memory alert repository
func NewInMemoryAlertRepository() *InMemoryAlertRepository {
	return &InMemoryAlertRepository{alerts: newTable((*models.Alert).Clone)}
}

func (r *InMemoryAlertRepository) GetByID(ctx context.Context, id int64) (*models.Alert, error) {
	if a, ok := r.alerts.get(id); ok {
		return a, nil
	}
	return nil, models.NotFoundf("alert", id)
}

func (r *InMemoryAlertRepository) List(ctx context.Context, filter ports.AlertFilter) ([]*models.Alert, error) {
	return r.alerts.list(func(a *models.Alert) bool {
		return (filter.Status == "" || a.Status == filter.Status) &&
			(filter.Severity == "" || a.Severity == filter.Severity)
	}), nil
}

func (r *InMemoryAlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	return r.alerts.insert(alert, func(a *models.Alert, id int64) { a.ID = id }, nil)
}

func (r *InMemoryAlertRepository) Update(ctx context.Context, id int64, fn func(*models.Alert) error) (*models.Alert, error) {
	a, found, err := r.alerts.update(id, fn)
	if !found {
		return nil, models.NotFoundf("alert", id)
	}
	return a, err
}
