package release

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory release store for testing and ephemeral
// deployments. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]stored
	seq    int64
	closed bool
}

// NewMemoryStore creates a new in-memory release store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]stored)}
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, r *Release) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if _, exists := m.items[r.ID]; exists {
		return ErrDuplicate
	}

	m.seq++
	m.items[r.ID] = stored{seq: m.seq, release: clone(r)}
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (*Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(it.release), nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(ctx context.Context) (*Release, error) {
	list, err := m.List(ctx, ListFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, f ListFilter) ([]*Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	items := make([]stored, 0, len(m.items))
	for _, it := range m.items {
		items = append(items, stored{seq: it.seq, release: clone(it.release)})
	}
	newestFirst(items)
	return applyFilter(items, f), nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.items = nil
	return nil
}
