package history

import (
	"context"
	"sync"
)

// MemoryStore keeps history in process memory. It honours the same
// retention and ordering rules as SQLStore but does not survive a restart;
// it backs HISTORY_DRIVER=memory and tests.
type MemoryStore struct {
	mu        sync.Mutex
	retention int
	nextID    int64
	entries   []Entry // oldest first
}

// NewMemoryStore creates an empty store bounded to retention entries.
func NewMemoryStore(retention int) *MemoryStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryStore{retention: retention}
}

// Init is a no-op.
func (m *MemoryStore) Init(context.Context) error {
	return nil
}

// Record appends e and drops the oldest entries beyond the bound.
func (m *MemoryStore) Record(ctx context.Context, e Entry) (Entry, error) {
	if err := checkEntry(e); err != nil {
		return Entry{}, err
	}
	if err := ctx.Err(); err != nil {
		return Entry{}, unavailable("record", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e.ID = m.nextID
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.retention; over > 0 {
		m.entries = append([]Entry(nil), m.entries[over:]...)
	}
	return e, nil
}

// List returns the retained entries, newest first.
func (m *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("list", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[len(m.entries)-1-i] = e
	}
	return out, nil
}
