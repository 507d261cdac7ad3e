package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/observability"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SummaryCacheKey is the cache key of the equipment status summary
	SummaryCacheKey = "gridops:equipment:summary"

	defaultSummaryTTL = 30 * time.Second
	defaultSampleSize = 50
)

var _ ports.GridService = (*GridService)(nil)

// Options tunes a GridService; zero values fall back to defaults
type Options struct {
	SummaryTTL time.Duration
	SampleSize int
	Clock      func() time.Time
}

// GridService implements ports.GridService on top of a repository bundle
type GridService struct {
	store      *ports.Store
	cache      ports.CacheRepository // Optional
	advisor    ports.Advisor         // Optional
	summaryTTL time.Duration
	sampleSize int
	now        func() time.Time
	logger     observability.Logger // Optional custom logger

	// summaryGen counts summary invalidations
	summaryGen atomic.Uint64
}

// NewGridService creates a new grid service instance
func NewGridService(store *ports.Store, cache ports.CacheRepository, advisor ports.Advisor, opts Options) *GridService {
	s := &GridService{
		store:      store,
		cache:      cache,
		advisor:    advisor,
		summaryTTL: opts.SummaryTTL,
		sampleSize: opts.SampleSize,
		now:        opts.Clock,
	}
	if s.summaryTTL <= 0 {
		s.summaryTTL = defaultSummaryTTL
	}
	if s.sampleSize <= 0 {
		s.sampleSize = defaultSampleSize
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SetLogger sets a custom logger for this service instance
func (s *GridService) SetLogger(l observability.Logger) {
	s.logger = l
}

// getLogger returns the custom logger if set, otherwise returns the global logger
func (s *GridService) getLogger() observability.Logger {
	if s.logger != nil {
		return s.logger
	}
	return observability.Log
}

// record appends an activity entry. The originating write has already been
// committed, so a failure here is logged rather than returned.
func (s *GridService) record(ctx context.Context, actor models.Actor, action, entity string, entityID int64, severity models.Severity, format string, args ...any) {
	entry := &models.ActivityLog{
		Action:      action,
		Description: fmt.Sprintf(format, args...),
		EntityType:  entity,
		Severity:    severity,
		Timestamp:   s.now(),
	}
	if actor.UserID > 0 {
		uid := actor.UserID
		entry.UserID = &uid
	}
	if entityID > 0 {
		eid := entityID
		entry.EntityID = &eid
	}
	if err := s.store.ActivityLogs.Append(ctx, entry); err != nil {
		s.getLogger().Errorw("Failed to append activity log", "action", action, "entity_type", entity, "entity_id", entityID, "error", err)
	}
}

// Register creates an active operator with a bcrypt-hashed password.
// Self-registration never grants a privileged role.
func (s *GridService) Register(ctx context.Context, req *ports.RegisterRequest) (*models.User, error) {
	if req == nil {
		return nil, models.Invalidf("registration payload is required")
	}
	s.getLogger().Infow("Register started", "username", req.Username)

	user, err := s.createUser(ctx, req, models.RoleOperator)
	if err != nil {
		s.getLogger().Warnw("Register failed", "username", req.Username, "error", err)
		return nil, err
	}

	s.record(ctx, models.Actor{UserID: user.ID, Role: user.Role}, "user_registered", models.EntityUser, user.ID, models.SeverityInfo, "User %s registered", user.Username)
	s.getLogger().Infow("Register completed successfully", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// BootstrapAdmin creates the configured administrator when no account with
// that username exists yet. It reports whether an account was created.
func (s *GridService) BootstrapAdmin(ctx context.Context, username, password string) (*models.User, bool, error) {
	existing, err := s.store.Users.GetByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	user, err := s.createUser(ctx, &ports.RegisterRequest{Username: username, Password: password, FullName: "Administrator"}, models.RoleAdmin)
	if err != nil {
		return nil, false, fmt.Errorf("bootstrap admin: %w", err)
	}

	s.record(ctx, models.Actor{UserID: user.ID, Role: user.Role}, "admin_bootstrapped", models.EntityUser, user.ID, models.SeverityWarning, "Administrator %s created from configuration", user.Username)
	s.getLogger().Infow("Bootstrap administrator created", "user_id", user.ID, "username", user.Username)
	return user, true, nil
}

func (s *GridService) createUser(ctx context.Context, req *ports.RegisterRequest, role models.Role) (*models.User, error) {
	user := &models.User{
		Username:   strings.TrimSpace(req.Username),
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       role,
		Email:      req.Email,
		Department: req.Department,
		IsActive:   true,
		CreatedAt:  s.now(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)

	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and stamps the last login time.
// Unknown users, wrong passwords and inactive accounts all fail the same way.
func (s *GridService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.getLogger().Infow("Login rejected", "username", username, "reason", "unknown user")
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.getLogger().Infow("Login rejected", "username", username, "reason", "password mismatch")
		return nil, models.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.getLogger().Infow("Login rejected", "username", username, "reason", "inactive")
		return nil, models.ErrInvalidCredentials
	}

	at := s.now()
	updated, err := s.store.Users.Update(ctx, user.ID, func(u *models.User) error {
		u.LastLogin = &at
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stamp last login: %w", err)
	}

	s.record(ctx, models.Actor{UserID: updated.ID, Role: updated.Role}, "user_login", models.EntityUser, updated.ID, models.SeverityInfo, "User %s logged in", updated.Username)
	return updated, nil
}

func (s *GridService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.store.Users.GetByID(ctx, id)
}

// ListUsers returns every account; admin only
func (s *GridService) ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("list users: %w", models.ErrForbidden)
	}
	return s.store.Users.List(ctx)
}

// UpdateUser changes role, activation or profile fields of an account; admin only
func (s *GridService) UpdateUser(ctx context.Context, actor models.Actor, id int64, patch models.UserPatch) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("update user: %w", models.ErrForbidden)
	}
	if id == actor.UserID && patch.IsActive != nil && !*patch.IsActive {
		return nil, models.Invalidf("administrators cannot deactivate their own account")
	}

	user, err := s.store.Users.Update(ctx, id, patch.Apply)
	if err != nil {
		s.getLogger().Warnw("UpdateUser failed", "user_id", id, "error", err)
		return nil, err
	}

	s.record(ctx, actor, "user_updated", models.EntityUser, id, models.SeverityInfo, "User %s updated (role=%s, active=%t)", user.Username, user.Role, user.IsActive)
	s.getLogger().Infow("UpdateUser completed successfully", "user_id", id, "role", user.Role, "active", user.IsActive)
	return user, nil
}

// newPermitNumber builds a unique human-readable permit reference
func newPermitNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PTW-%s-%s", at.UTC().Format("20060102"), suffix)
}
