package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// MockCacheRepository is a mock implementation of CacheRepository for testing
type MockCacheRepository struct {
	mu      sync.RWMutex
	entries map[string][]byte

	// Call counters
	Gets    int
	Sets    int
	Deletes int

	// Function overrides for testing
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

var _ ports.CacheRepository = (*MockCacheRepository)(nil)

// NewMockCacheRepository creates a new mock cache
func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{entries: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	m.Gets++
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return append([]byte(nil), value...), nil
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.Sets++
	m.mu.Unlock()
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.Deletes++
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Has reports whether key is currently cached
func (m *MockCacheRepository) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}
