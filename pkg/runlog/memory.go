package runlog

import (
	"context"
	"sync"
)

// Memory is an in-memory Sink for tests.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Append stores the entry.
func (m *Memory) Append(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Trim keeps only the newest keep entries.
func (m *Memory) Trim(_ context.Context, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if keep <= 0 || len(m.entries) <= keep {
		return nil
	}
	m.entries = append([]Entry(nil), m.entries[len(m.entries)-keep:]...)
	return nil
}

// Entries returns a copy of the stored entries.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}
