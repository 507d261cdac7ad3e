package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

var (
	userColumns = []string{
		"id", "username", "password", "full_name", "role", "email", "department",
		"is_active", "last_login", "created_at",
	}
	equipmentColumns = []string{
		"id", "name", "type", "location", "voltage", "status", "specifications",
		"installation_date", "last_maintenance_date", "next_maintenance_date",
		"manufacturer_id", "serial_number", "notes", "created_at", "updated_at",
	}
	permitColumns = []string{
		"id", "permit_number", "title", "description", "status", "start_time", "end_time",
		"location", "requested_by_id", "approved_by_id", "equipment_ids", "safety_measures",
		"created_at", "updated_at",
	}
	alertColumns = []string{
		"id", "title", "description", "severity", "status", "equipment_id",
		"resolved_by_id", "resolved_at", "notes", "timestamp",
	}
)

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectPrepare("INSERT INTO users").
		ExpectQuery().
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &models.User{Username: "alice", Password: "h", Role: models.RoleOperator})

	assert.ErrorIs(t, err, models.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewUserRepository(db)
	user := &models.User{Username: "alice", Password: "h", Role: models.RoleOperator, IsActive: true}

	mock.ExpectPrepare("INSERT INTO users").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE LOWER\\(username\\) = (.+)").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "Alice", "hash", "Alice A", "manager", "", "", true, nil, now))

	user, err := repo.GetByUsername(context.Background(), "  ALICE ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Username)
	assert.Equal(t, models.RoleManager, user.Role)
	assert.Nil(t, user.LastLogin)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE LOWER\\(username\\) = (.+)").
		WithArgs("bob").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepository_GetByID(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	now := time.Now()
	next := now.Add(48 * time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = (.+)").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(equipmentColumns).
			AddRow(3, "T1", "transformer", "Sub A", 110.0, "operational", []byte(`{"ratingMVA":40}`),
				nil, nil, next, nil, "SN-1", "", now, now))

	e, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentTypeTransformer, e.Type)
	assert.Equal(t, models.EquipmentStatusOperational, e.Status)
	assert.Equal(t, 40.0, e.Specifications["ratingMVA"])
	require.NotNil(t, e.NextMaintenanceDate)
	assert.True(t, e.NextMaintenanceDate.Equal(next))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = (.+)").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	result, err := repo.GetByID(context.Background(), 9)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepository_ListWithFilter(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE type = (.+) AND status = (.+) ORDER BY id").
		WithArgs(models.EquipmentTypeCircuitBreaker, models.EquipmentStatusOpen).
		WillReturnRows(sqlmock.NewRows(equipmentColumns).
			AddRow(4, "CB1", "circuit_breaker", "", 33.0, "open", []byte(`{}`), nil, nil, nil, nil, "", "", now, now))

	items, err := repo.List(context.Background(), ports.EquipmentFilter{
		Type:   models.EquipmentTypeCircuitBreaker,
		Status: models.EquipmentStatusOpen,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CB1", items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepository_Update(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(equipmentColumns).
			AddRow(3, "T1", "transformer", "", 110.0, "operational", []byte(`{}`), nil, nil, nil, nil, "", "", now, now))
	mock.ExpectExec("UPDATE equipment").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status := models.EquipmentStatusMaintenance
	updated, err := repo.Update(context.Background(), 3, models.EquipmentPatch{Status: &status}.Apply)
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentStatusMaintenance, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepository_UpdateRejectedRollsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(equipmentColumns).
			AddRow(4, "CB1", "circuit_breaker", "", 33.0, "closed", []byte(`{}`), nil, nil, nil, nil, "", "", now, now))
	mock.ExpectRollback()

	status := models.EquipmentStatusOperational
	_, err := repo.Update(context.Background(), 4, models.EquipmentPatch{Status: &status}.Apply)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepository_Delete(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)

	mock.ExpectExec("DELETE FROM equipment WHERE id = (.+)").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM equipment WHERE id = (.+)").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 3), models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermitRepository_GetByIDScansArrays(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewPermitRepository(db)
	start := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM work_permits WHERE id = (.+)").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(permitColumns).
			AddRow(1, "PTW-20260310-ABCDEF12", "Swap CT", "", "pending", start, start.Add(time.Hour),
				"", 5, nil, "{3,4}", `{"earthing","lockout"}`, start, start))

	p, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, p.EquipmentIDs)
	assert.Equal(t, []string{"earthing", "lockout"}, p.SafetyMeasures)
	assert.Nil(t, p.ApprovedByID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermitRepository_CreateDuplicateNumber(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewPermitRepository(db)
	start := time.Now()

	mock.ExpectPrepare("INSERT INTO work_permits").
		ExpectQuery().
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &models.WorkPermit{
		PermitNumber: "PTW-1", Title: "t", Status: models.PermitStatusPending,
		StartTime: start, EndTime: start.Add(time.Hour), RequestedByID: 1,
	})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermitRepository_InvalidTransitionRollsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewPermitRepository(db)
	start := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM work_permits WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(permitColumns).
			AddRow(1, "PTW-1", "Swap CT", "", "pending", start, start.Add(time.Hour),
				"", 5, nil, "{}", "{}", start, start))
	mock.ExpectRollback()

	completed := models.PermitStatusCompleted
	_, err := repo.Update(context.Background(), 1, models.PermitPatch{Status: &completed}.Apply)

	var terr *models.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "pending", terr.From)
	assert.Equal(t, "completed", terr.To)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_RepeatResolveWritesNothing(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAlertRepository(db)
	raised := time.Now().Add(-time.Hour)
	resolvedAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM alerts WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(alertColumns).
			AddRow(2, "Overload", "", "critical", "resolved", nil, 5, resolvedAt, "", raised))
	mock.ExpectCommit()

	var already bool
	alert, err := repo.Update(context.Background(), 2, func(a *models.Alert) error {
		var err error
		already, err = a.Resolve(9, time.Now(), "again")
		return err
	})
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, int64(5), *alert.ResolvedByID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_Resolve(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAlertRepository(db)
	raised := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM alerts WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(alertColumns).
			AddRow(2, "Overload", "", "critical", "active", nil, nil, nil, "", raised))
	mock.ExpectExec("UPDATE alerts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	alert, err := repo.Update(context.Background(), 2, func(a *models.Alert) error {
		_, err := a.Resolve(9, time.Now(), "")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusResolved, alert.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityLogRepository(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewActivityLogRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectPrepare("INSERT INTO activity_logs").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	entry := &models.ActivityLog{Action: "permit_approved", Severity: models.SeverityInfo, Timestamp: now}
	require.NoError(t, repo.Append(ctx, entry))
	assert.Equal(t, int64(11), entry.ID)

	mock.ExpectQuery("SELECT (.+) FROM activity_logs ORDER BY timestamp DESC, id DESC LIMIT (.+)").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "description", "user_id", "entity_type", "entity_id", "severity", "timestamp"}).
			AddRow(11, "permit_approved", "", 2, "work_permit", 4, "info", now).
			AddRow(10, "permit_created", "", 3, "work_permit", 4, "info", now.Add(-time.Minute)))

	logs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "permit_approved", logs[0].Action)
	require.NotNil(t, logs[0].EntityID)
	assert.Equal(t, int64(4), *logs[0].EntityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnergyReadingRepository_ListFilters(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEnergyReadingRepository(db)
	since := time.Now().Add(-time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM energy_readings WHERE equipment_id = (.+) AND timestamp >= (.+) ORDER BY timestamp DESC, id DESC LIMIT (.+)").
		WithArgs(int64(3), since, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "equipment_id", "value", "voltage", "current", "frequency", "power_factor", "source", "timestamp"}).
			AddRow(1, 3, 12.5, 11000.0, 40.0, 50.0, 0.97, "zonus", time.Now()))

	readings, err := repo.List(context.Background(), ports.EnergyFilter{EquipmentID: 3, Since: &since, Limit: 5})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "zonus", readings[0].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnergyReadingRepository_ListError(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEnergyReadingRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM energy_readings").
		WillReturnError(errors.New("database error"))

	result, err := repo.List(context.Background(), ports.EnergyFilter{})
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to list energy readings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_SkipsAppliedSchema(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schema_migrations WHERE migration_name = (.+)").
		WithArgs(initialMigration).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	require.NoError(t, NewMigrator(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_AppliesSchema(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schema_migrations").
		WithArgs(initialMigration).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(initialMigration, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, NewMigrator(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAdapter_PopulatesEveryRepository(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	adapter := NewPostgresAdapterWithDB(db, &ports.PostgresConfig{Host: "localhost", Port: 5432, User: "grid", Database: "gridops", SSLMode: "disable"})
	store := &ports.Store{}
	adapter.Populate(store)

	assert.NotNil(t, store.Users)
	assert.NotNil(t, store.Equipment)
	assert.NotNil(t, store.Permits)
	assert.NotNil(t, store.Alerts)
	assert.NotNil(t, store.ActivityLogs)
	assert.NotNil(t, store.EnergyReadings)
	assert.Equal(t, ports.DatabaseTypePostgreSQL, adapter.GetType())
	assert.Contains(t, adapter.DSN(), "dbname=gridops")
}
