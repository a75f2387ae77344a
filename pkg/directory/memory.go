package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentstation/contactbridge/pkg/contacts"
	"github.com/agentstation/contactbridge/pkg/errors"
)

// Memory is an in-memory Directory used by tests. It enforces the same
// concurrency-token discipline as a real directory: updates with a token
// other than the current one fail.
type Memory struct {
	mu     sync.Mutex
	nextID int
	order  []string
	byID   map[string]*contacts.ContactRecord
	labels map[string]map[string]bool // label -> set of ids
	tokens map[string]int

	// FailCreate and FailUpdate make the next matching write fail, for
	// exercising the mark-consumed-on-failure paths.
	FailCreate bool
	FailUpdate bool
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		byID:   make(map[string]*contacts.ContactRecord),
		labels: make(map[string]map[string]bool),
		tokens: make(map[string]int),
	}
}

// ListByLabel returns records carrying the label, in creation order.
func (m *Memory) ListByLabel(_ context.Context, label string) ([]*contacts.ContactRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	members := m.labels[label]
	out := make([]*contacts.ContactRecord, 0, len(members))
	for _, id := range m.order {
		if members[id] {
			out = append(out, m.byID[id].Clone())
		}
	}
	return out, nil
}

// ListAll returns every record in creation order.
func (m *Memory) ListAll(_ context.Context) ([]*contacts.ContactRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*contacts.ContactRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id].Clone())
	}
	return out, nil
}

// Create inserts the record and assigns it an identifier and a token.
func (m *Memory) Create(_ context.Context, rec *contacts.ContactRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreate {
		m.FailCreate = false
		return "", errors.NewDirectoryError("create", "", errors.New("injected create failure"))
	}

	m.nextID++
	id := fmt.Sprintf("people/c%d", m.nextID)
	stored := rec.Clone()
	stored.ResourceID = id
	m.tokens[id] = 1
	stored.Token = m.token(id)
	m.byID[id] = stored
	m.order = append(m.order, id)
	return id, nil
}

// Update overwrites the record if the token is current, and rotates the
// token.
func (m *Memory) Update(_ context.Context, id, token string, rec *contacts.ContactRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpdate {
		m.FailUpdate = false
		return errors.NewDirectoryError("update", id, errors.New("injected update failure"))
	}

	if _, ok := m.byID[id]; !ok {
		return errors.NewDirectoryError("update", id, errors.ErrNotFound)
	}
	if token != m.token(id) {
		return errors.NewDirectoryError("update", id, errors.ErrStaleToken)
	}

	m.tokens[id]++
	stored := rec.Clone()
	stored.ResourceID = id
	stored.Token = m.token(id)
	m.byID[id] = stored
	return nil
}

// AddToLabel adds the record to the label group.
func (m *Memory) AddToLabel(_ context.Context, id, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return errors.NewDirectoryError("label", id, errors.ErrNotFound)
	}
	if m.labels[label] == nil {
		m.labels[label] = make(map[string]bool)
	}
	m.labels[label][id] = true
	return nil
}

// RefreshToken returns the current concurrency token for the record.
func (m *Memory) RefreshToken(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return "", errors.NewDirectoryError("token", id, errors.ErrNotFound)
	}
	return m.token(id), nil
}

// Get returns the stored record by identifier.
func (m *Memory) Get(id string) (*contacts.ContactRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *Memory) token(id string) string {
	return fmt.Sprintf("etag-%s-%d", id, m.tokens[id])
}
