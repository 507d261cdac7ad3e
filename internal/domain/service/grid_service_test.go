package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/hsdfat8/gridops/internal/adapters/memory"
	"github.com/hsdfat8/gridops/internal/adapters/mocks"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *GridService
	store    *ports.Store
	cache    *mocks.MockCacheRepository
	activity *mocks.MockActivityLogRepository
}

func newFixture(t *testing.T, advisor ports.Advisor) *fixture {
	t.Helper()
	store := memory.NewStore()
	activity := mocks.NewMockActivityLogRepository()
	store.ActivityLogs = activity
	cache := mocks.NewMockCacheRepository()
	svc := NewGridService(store, cache, advisor, Options{
		Clock: func() time.Time { return testNow },
	})
	return &fixture{svc: svc, store: store, cache: cache, activity: activity}
}

var (
	admin    = models.Actor{UserID: 100, Role: models.RoleAdmin}
	manager  = models.Actor{UserID: 2, Role: models.RoleManager}
	operator = models.Actor{UserID: 3, Role: models.RoleOperator}
)

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, &ports.RegisterRequest{Username: "Dispatcher", Password: "s3cret", FullName: "Grid Dispatcher"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOperator, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret", user.Password, "password must be stored hashed")

	_, err = f.svc.Register(ctx, &ports.RegisterRequest{Username: "dispatcher", Password: "other"})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	logged, err := f.svc.Authenticate(ctx, "DISPATCHER", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, logged.LastLogin)
	assert.True(t, logged.LastLogin.Equal(testNow))

	_, err = f.svc.Authenticate(ctx, "dispatcher", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = f.svc.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *ports.RegisterRequest
	}{
		{"nil request", nil},
		{"missing username", &ports.RegisterRequest{Password: "x"}},
		{"missing password", &ports.RegisterRequest{Username: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestBootstrapAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	user, created, err := f.svc.BootstrapAdmin(ctx, "root", "changeme")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, user.Role)

	again, created, err := f.svc.BootstrapAdmin(ctx, "ROOT", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	_, err = f.svc.Authenticate(ctx, "root", "changeme")
	assert.NoError(t, err)

	_, _, err = f.svc.BootstrapAdmin(ctx, "", "pw")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, &ports.RegisterRequest{Username: "field", Password: "pw"})
	require.NoError(t, err)

	inactive := false
	_, err = f.svc.UpdateUser(ctx, operator, user.ID, models.UserPatch{IsActive: &inactive})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.svc.UpdateUser(ctx, admin, user.ID, models.UserPatch{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "field", "pw")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestUpdateUser_AdminCannotDeactivateSelf(t *testing.T) {
	f := newFixture(t, nil)
	inactive := false
	_, err := f.svc.UpdateUser(context.Background(), admin, admin.UserID, models.UserPatch{IsActive: &inactive})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestListUsers_AdminOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.ListUsers(ctx, manager)
	assert.ErrorIs(t, err, models.ErrForbidden)

	users, err := f.svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestCreateEquipment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cb, err := f.svc.CreateEquipment(ctx, operator, &models.Equipment{Name: "CB-7", Type: models.EquipmentTypeCircuitBreaker})
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentStatusClosed, cb.Status, "empty status defaults per type")
	assert.True(t, cb.CreatedAt.Equal(testNow))

	_, err = f.svc.CreateEquipment(ctx, operator, &models.Equipment{Name: "CB-8", Type: models.EquipmentTypeCircuitBreaker, Status: models.EquipmentStatusOperational})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.CreateEquipment(ctx, operator, &models.Equipment{Name: "X", Type: "reactor"})
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.Equal(t, []string{"equipment_created"}, f.activity.Actions())
}

func TestTransformerMaintenanceCountsOffline(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	t1, err := f.svc.CreateEquipment(ctx, operator, &models.Equipment{Name: "T1", Type: models.EquipmentTypeTransformer, Status: models.EquipmentStatusOperational})
	require.NoError(t, err)

	status := models.EquipmentStatusMaintenance
	_, err = f.svc.UpdateEquipment(ctx, operator, t1.ID, models.EquipmentPatch{Status: &status})
	require.NoError(t, err)

	summary, err := f.svc.EquipmentSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ByType[models.EquipmentTypeTransformer].Offline)
	assert.Equal(t, 0, summary.ByType[models.EquipmentTypeTransformer].Online)
	assert.Equal(t, 1, summary.Total)

	assert.Equal(t, []string{"equipment_created", "equipment_status_changed"}, f.activity.Actions())
}

func TestEquipmentSummary_CacheLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	e, err := f.svc.CreateEquipment(ctx, operator, &models.Equipment{Name: "F1", Type: models.EquipmentTypeFeeder})
	require.NoError(t, err)

	_, err = f.svc.EquipmentSummary(ctx)
	require.NoError(t, err)
	assert.True(t, f.cache.Has(SummaryCacheKey))

	// Any equipment write drops the cached summary.
	status := models.EquipmentStatusFault
	_, err = f.svc.UpdateEquipment(ctx, operator, e.ID, models.EquipmentPatch{Status: &status})
	require.NoError(t, err)
	assert.False(t, f.cache.Has(SummaryCacheKey))

	summary, err := f.svc.EquipmentSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ByType[models.EquipmentTypeFeeder].Fault)
}

func TestEquipmentSummary_StaleWriteDropped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	e, err := f.svc.CreateEquipment(ctx, operator, &models.Equipment{Name: "F1", Type: models.EquipmentTypeFeeder})
	require.NoError(t, err)

	// An equipment update lands between the listing and the cache write.
	f.cache.SetFunc = func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
		f.cache.SetFunc = nil
		status := models.EquipmentStatusFault
		_, err := f.svc.UpdateEquipment(ctx, operator, e.ID, models.EquipmentPatch{Status: &status})
		require.NoError(t, err)
		return f.cache.Set(ctx, key, value, ttl)
	}

	summary, err := f.svc.EquipmentSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ByType[models.EquipmentTypeFeeder].Online)
	assert.False(t, f.cache.Has(SummaryCacheKey), "summary computed before the update must not stay cached")

	summary, err = f.svc.EquipmentSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ByType[models.EquipmentTypeFeeder].Fault)
	assert.True(t, f.cache.Has(SummaryCacheKey))
}

func TestEquipmentSummary_ServedFromCache(t *testing.T) {
	f := newFixture(t, nil)
	cached := &models.StatusSummary{
		ByType: map[models.EquipmentType]*models.TypeSummary{
			models.EquipmentTypeFeeder: {Online: 7, Total: 7},
		},
		Total: 7,
	}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	f.cache.GetFunc = func(ctx context.Context, key string) ([]byte, error) {
		assert.Equal(t, SummaryCacheKey, key)
		return payload, nil
	}

	summary, err := f.svc.EquipmentSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Total)
	assert.Equal(t, 0, f.cache.Sets)
}

func TestEquipmentSummary_CacheErrorsAreIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.cache.GetFunc = func(ctx context.Context, key string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}
	f.cache.SetFunc = func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
		return errors.New("connection refused")
	}

	summary, err := f.svc.EquipmentSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
}

func TestDeleteEquipment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	e, err := f.svc.CreateEquipment(ctx, operator, &models.Equipment{Name: "D1", Type: models.EquipmentTypeDisconnector})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteEquipment(ctx, operator, e.ID))

	_, err = f.svc.GetEquipment(ctx, e.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteEquipment(ctx, operator, e.ID), models.ErrNotFound)
}

func newPermit() *models.WorkPermit {
	return &models.WorkPermit{
		Title:     "Replace bushing",
		StartTime: testNow.Add(24 * time.Hour),
		EndTime:   testNow.Add(28 * time.Hour),
		Location:  "Substation North",
	}
}

func TestCreatePermit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p, err := f.svc.CreatePermit(ctx, operator, newPermit())
	require.NoError(t, err)
	assert.Equal(t, models.PermitStatusPending, p.Status)
	assert.Equal(t, operator.UserID, p.RequestedByID)
	assert.Regexp(t, regexp.MustCompile(`^PTW-20260310-[0-9A-F]{8}$`), p.PermitNumber)
	assert.NotNil(t, p.EquipmentIDs)

	bad := newPermit()
	bad.EndTime = bad.StartTime
	_, err = f.svc.CreatePermit(ctx, operator, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	approved := newPermit()
	approved.Status = models.PermitStatusApproved
	_, err = f.svc.CreatePermit(ctx, operator, approved)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestPermitWorkflow(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p, err := f.svc.CreatePermit(ctx, operator, newPermit())
	require.NoError(t, err)

	move := func(actor models.Actor, status models.PermitStatus, approver *int64) (*models.WorkPermit, error) {
		return f.svc.UpdatePermit(ctx, actor, p.ID, models.PermitPatch{Status: &status, ApprovedByID: approver})
	}

	// Skipping straight to completed is refused and leaves the record alone.
	_, err = move(manager, models.PermitStatusCompleted, nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	stored, err := f.svc.GetPermit(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PermitStatusPending, stored.Status)

	// Operators cannot decide on permits.
	approver := manager.UserID
	_, err = move(operator, models.PermitStatusApproved, &approver)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// Approving needs an approver; an anonymous actor cannot stand in for one.
	_, err = move(models.Actor{Role: models.RoleManager}, models.PermitStatusApproved, nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	got, err := move(manager, models.PermitStatusApproved, &approver)
	require.NoError(t, err)
	require.NotNil(t, got.ApprovedByID)
	assert.Equal(t, manager.UserID, *got.ApprovedByID)

	// Re-sending the current status from another admin is not a transition
	// and keeps the recorded approver.
	got, err = move(admin, models.PermitStatusApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, manager.UserID, *got.ApprovedByID)

	got, err = move(operator, models.PermitStatusInProgress, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PermitStatusInProgress, got.Status)

	got, err = move(operator, models.PermitStatusCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PermitStatusCompleted, got.Status)

	_, err = move(manager, models.PermitStatusInProgress, nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	assert.Equal(t, []string{"permit_created", "permit_approved", "permit_updated", "permit_in_progress", "permit_completed"}, f.activity.Actions())
}

func TestUpdatePermit_ApproverDefaultsToActor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p, err := f.svc.CreatePermit(ctx, operator, newPermit())
	require.NoError(t, err)

	approved := models.PermitStatusApproved
	got, err := f.svc.UpdatePermit(ctx, manager, p.ID, models.PermitPatch{Status: &approved})
	require.NoError(t, err)
	require.NotNil(t, got.ApprovedByID)
	assert.Equal(t, manager.UserID, *got.ApprovedByID)
}

func TestUpdatePermit_NonStatusEdit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p, err := f.svc.CreatePermit(ctx, operator, newPermit())
	require.NoError(t, err)

	title := "Replace bushing and gasket"
	got, err := f.svc.UpdatePermit(ctx, operator, p.ID, models.PermitPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, models.PermitStatusPending, got.Status)

	early := p.StartTime.Add(-time.Hour)
	_, err = f.svc.UpdatePermit(ctx, operator, p.ID, models.PermitPatch{EndTime: &early})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.UpdatePermit(ctx, operator, 999, models.PermitPatch{Title: &title})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResolveAlert(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a, err := f.svc.CreateAlert(ctx, operator, &models.Alert{Title: "Overload on F2", Severity: models.SeverityCritical, Timestamp: testNow.Add(-time.Hour)})
	require.NoError(t, err)
	assert.True(t, a.Timestamp.Equal(testNow), "timestamp is assigned on insert")
	assert.Equal(t, models.AlertStatusActive, a.Status)

	resolved, already, err := f.svc.ResolveAlert(ctx, operator, a.ID, "load shed")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.AlertStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedByID)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, operator.UserID, *resolved.ResolvedByID)

	// A second resolve by someone else keeps the first resolution.
	f.svc.now = func() time.Time { return testNow.Add(time.Hour) }
	again, already, err := f.svc.ResolveAlert(ctx, manager, a.ID, "")
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, operator.UserID, *again.ResolvedByID)
	assert.True(t, again.ResolvedAt.Equal(testNow))

	_, _, err = f.svc.ResolveAlert(ctx, operator, 404, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIgnoredAlertCannotBeResolved(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a, err := f.svc.CreateAlert(ctx, operator, &models.Alert{Title: "Flicker"})
	require.NoError(t, err)
	assert.Equal(t, models.SeverityWarning, a.Severity)

	_, err = f.svc.IgnoreAlert(ctx, operator, a.ID, "known issue")
	require.NoError(t, err)

	_, _, err = f.svc.ResolveAlert(ctx, operator, a.ID, "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestCreateAlert_UnknownEquipment(t *testing.T) {
	f := newFixture(t, nil)
	missing := int64(77)
	_, err := f.svc.CreateAlert(context.Background(), operator, &models.Alert{Title: "x", EquipmentID: &missing})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestActivityFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t, nil)
	f.activity.AppendFunc = func(ctx context.Context, entry *models.ActivityLog) error {
		return errors.New("disk full")
	}

	e, err := f.svc.CreateEquipment(context.Background(), operator, &models.Equipment{Name: "T9", Type: models.EquipmentTypeTransformer})
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
}

func TestRecordEnergyReading(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.RecordEnergyReading(ctx, &models.EnergyReading{EquipmentID: 5, Value: 1})
	assert.ErrorIs(t, err, models.ErrValidation)

	e, err := f.svc.CreateEquipment(ctx, operator, &models.Equipment{Name: "F1", Type: models.EquipmentTypeFeeder})
	require.NoError(t, err)

	backdated := testNow.Add(-72 * time.Hour)
	r, err := f.svc.RecordEnergyReading(ctx, &models.EnergyReading{EquipmentID: e.ID, Value: 12.5, PowerFactor: 0.95, Timestamp: backdated})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultEnergySource, r.Source)
	assert.True(t, r.Timestamp.Equal(testNow))

	readings, err := f.svc.ListEnergyReadings(ctx, ports.EnergyFilter{EquipmentID: e.ID})
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestAnalyzeLogs_WithoutAdvisorReturnsFallback(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.RecordActivity(ctx, &models.ActivityLog{Action: "manual_note"})
	require.NoError(t, err)

	report, err := f.svc.AnalyzeLogs(ctx)
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.Len(t, report.Logs, 1)
	require.Len(t, report.Analysis.PotentialIssues, 1)
	assert.Equal(t, "AI analysis service unavailable", report.Analysis.PotentialIssues[0].Issue)
	assert.Equal(t, "low", report.Analysis.PotentialIssues[0].Severity)
	assert.NotNil(t, report.Analysis.PerformanceInsights)
	assert.NotNil(t, report.Analysis.Anomalies)

	energy, err := f.svc.RecommendEnergy(ctx)
	require.NoError(t, err)
	assert.True(t, energy.Degraded)
	assert.Equal(t, "unknown", energy.Recommendations.PotentialSavings)
}

func TestAnalyzeLogs_UsesAdvisor(t *testing.T) {
	advisor := mocks.NewMockAdvisor()
	advisor.AnalyzeLogsFunc = func(ctx context.Context, logs []*models.ActivityLog) models.LogAnalysisResult {
		return models.LogAnalysisResult{
			Outcome:  models.AdvisorOK,
			Analysis: models.LogAnalysis{Summary: "all quiet", PotentialIssues: []models.Issue{}},
		}
	}
	f := newFixture(t, advisor)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.RecordActivity(ctx, &models.ActivityLog{Action: "tick"})
		require.NoError(t, err)
	}

	report, err := f.svc.AnalyzeLogs(ctx)
	require.NoError(t, err)
	assert.False(t, report.Degraded)
	assert.Equal(t, "all quiet", report.Analysis.Summary)
	assert.Len(t, advisor.LastLogs, 3)
}
