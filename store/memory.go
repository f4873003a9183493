package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is a thread-safe, in-memory Store. Its contents are lost when the process exits.
type Memory struct {
	mu     sync.RWMutex
	boards map[string]Record
}

// NewMemory creates a new, empty in-memory board store.
func NewMemory() *Memory {
	return &Memory{boards: make(map[string]Record)}
}

// Create stores a new board and assigns it an id
func (m *Memory) Create(ctx context.Context, state string) (Record, error) {
	ts := now()
	rec := Record{ID: newID(), State: state, CreatedAt: ts, UpdatedAt: ts}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards[rec.ID] = rec
	return rec, nil
}

// Get retrieves a board by id
func (m *Memory) Get(ctx context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.boards[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Update replaces the state of an existing board
func (m *Memory) Update(ctx context.Context, id, state string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.boards[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.State = state
	rec.UpdatedAt = now()
	m.boards[id] = rec
	return rec, nil
}

// List returns all boards ordered by creation time, newest first
func (m *Memory) List(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	summaries := make([]Summary, 0, len(m.boards))
	for _, rec := range m.boards {
		summaries = append(summaries, Summary{ID: rec.ID, CreatedAt: rec.CreatedAt})
	}
	m.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}
