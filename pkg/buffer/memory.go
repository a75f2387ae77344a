package buffer

import (
	"context"
	"sync"
)

// Memory is an in-memory Store used by tests and single-process
// deployments. Rows keep insertion order, the way a sheet would.
type Memory struct {
	mu    sync.Mutex
	order []string
	rows  map[string]Row
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]Row)}
}

// ReadAll returns every row in insertion order.
func (m *Memory) ReadAll(_ context.Context) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Row, 0, len(m.order))
	for _, fp := range m.order {
		out = append(out, m.rows[fp])
	}
	return out, nil
}

// Upsert inserts or overwrites the row keyed by its fingerprint.
func (m *Memory) Upsert(_ context.Context, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[row.Fingerprint]; !ok {
		m.order = append(m.order, row.Fingerprint)
	}
	m.rows[row.Fingerprint] = row
	return nil
}

// MarkConsumed flips the row's status to Consumed.
func (m *Memory) MarkConsumed(_ context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row, ok := m.rows[fingerprint]; ok {
		row.Status = StatusConsumed
		m.rows[fingerprint] = row
	}
	return nil
}

// Len returns the number of rows.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// Get returns the row with the given fingerprint.
func (m *Memory) Get(fingerprint string) (Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[fingerprint]
	return row, ok
}
