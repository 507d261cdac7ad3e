package memory

import (
	"sync"
	"time"

	"github.com/hsdfat8/gridops/internal/domain/models"
)

// table is an insertion-ordered, id-keyed collection with its own id counter.
// Rows go in and come out as copies so callers never share stored state.
type table[T any] struct {
	mu     sync.RWMutex
	rows   map[int64]*T
	order  []int64
	nextID int64
	clone  func(*T) *T
}

func newTable[T any](clone func(*T) *T) *table[T] {
	return &table[T]{
		rows:   make(map[int64]*T),
		nextID: 1,
		clone:  clone,
	}
}

func (t *table[T]) get(id int64) (*T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	return t.clone(row), true
}

// insert assigns the next id to row and stores a copy of it.
// conflicts, when non-nil, is checked against every stored row first.
func (t *table[T]) insert(row *T, setID func(*T, int64), conflicts func(*T) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if conflicts != nil {
		for _, existing := range t.rows {
			if conflicts(existing) {
				return models.ErrAlreadyExists
			}
		}
	}

	id := t.nextID
	t.nextID++
	setID(row, id)
	t.rows[id] = t.clone(row)
	t.order = append(t.order, id)
	return nil
}

func (t *table[T]) list(match func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if match == nil || match(row) {
			result = append(result, t.clone(row))
		}
	}
	return result
}

// newest returns up to limit matching rows, most recently inserted first
func (t *table[T]) newest(limit int, match func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*T, 0)
	for i := len(t.order) - 1; i >= 0; i-- {
		row := t.rows[t.order[i]]
		if match != nil && !match(row) {
			continue
		}
		result = append(result, t.clone(row))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}

// update runs fn on a working copy under the write lock and stores it only if fn succeeds
func (t *table[T]) update(id int64, fn func(*T) error) (*T, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return nil, false, nil
	}
	working := t.clone(row)
	if err := fn(working); err != nil {
		return nil, true, err
	}
	t.rows[id] = t.clone(working)
	return working, true, nil
}

func (t *table[T]) remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, rowID := range t.order {
		if rowID == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
