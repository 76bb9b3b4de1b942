package store

import (
	"context"
	"slices"
	"sync"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

// MemoryStore keeps the timetable in process memory. Readers keep seeing the previous rows until Commit swaps them
type MemoryStore struct {
	mu   sync.RWMutex
	rows []Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make([]Row, 0)}
}

// Clear leaves the rows in place, the replacement happens as a whole in Commit
func (store *MemoryStore) Clear(ctx context.Context) error {
	return nil
}

func (store *MemoryStore) Commit(ctx context.Context, entries []model.ScheduleEntry) error {
	rows := NewRows(entries)

	store.mu.Lock()
	defer store.mu.Unlock()
	store.rows = rows
	return nil
}

// Abort leaves the stored rows as they are
func (store *MemoryStore) Abort(ctx context.Context) error {
	return nil
}

func (store *MemoryStore) List(ctx context.Context) ([]Row, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return slices.Clone(store.rows), nil
}
