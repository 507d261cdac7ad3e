package mocks

import (
	"context"
	"sync"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// MockActivityLogRepository is a mock implementation of ActivityLogRepository for testing
type MockActivityLogRepository struct {
	mu      sync.RWMutex
	entries []*models.ActivityLog
	nextID  int64

	// Function overrides for testing
	AppendFunc func(ctx context.Context, entry *models.ActivityLog) error
	ListFunc   func(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

var _ ports.ActivityLogRepository = (*MockActivityLogRepository)(nil)

// NewMockActivityLogRepository creates a new mock activity log repository
func NewMockActivityLogRepository() *MockActivityLogRepository {
	return &MockActivityLogRepository{
		entries: make([]*models.ActivityLog, 0),
		nextID:  1,
	}
}

// Append records an entry
func (m *MockActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.nextID
	m.nextID++

	// Store copy
	stored := *entry
	m.entries = append(m.entries, &stored)
	return nil
}

// List returns the newest entries first
func (m *MockActivityLogRepository) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.ActivityLog, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := *m.entries[i]
		result = append(result, &entry)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Actions returns the recorded actions in insertion order
func (m *MockActivityLogRepository) Actions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	actions := make([]string, len(m.entries))
	for i, e := range m.entries {
		actions[i] = e.Action
	}
	return actions
}
