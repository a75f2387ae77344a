package contactbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/contactbridge/pkg/buffer"
	"github.com/agentstation/contactbridge/pkg/directory"
	"github.com/agentstation/contactbridge/pkg/errors"
	"github.com/agentstation/contactbridge/pkg/lock"
	"github.com/agentstation/contactbridge/pkg/runlog"
)

// Bridge runs sync cycles for one party against the shared buffer.
type Bridge interface {
	// Sync executes one run: acquire the shared lock, pull, push,
	// release. Per-row failures are recorded in the result and the run
	// log; only configuration and lock-acquisition failures return an
	// error.
	Sync(ctx context.Context, opts ...SyncOption) (*RunResult, error)

	// Status reports buffer occupancy without acquiring the lock.
	Status(ctx context.Context) (*BufferStatus, error)
}

// bridge is the internal implementation of the Bridge interface.
type bridge struct {
	cfg    Config
	dir    directory.Directory
	store  buffer.Store
	locker lock.Locker
	sink   runlog.Sink
	now    func() time.Time
}

// New creates a Bridge for the configured party. The directory, buffer
// store, and locker collaborators are required; the configuration is
// validated once, here, before any buffer access is possible.
func New(cfg Config, opts ...Option) (Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &bridge{
		cfg:  cfg.withDefaults(),
		sink: runlog.NewMemory(),
		now:  time.Now,
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if b.dir == nil {
		return nil, errors.NewConfigError("directory", "a directory collaborator is required")
	}
	if b.store == nil {
		return nil, errors.NewConfigError("buffer", "a buffer store collaborator is required")
	}
	if b.locker == nil {
		return nil, errors.NewConfigError("lock", "a locker collaborator is required")
	}

	return b, nil
}

// BufferStatus summarizes buffer occupancy per party.
type BufferStatus struct {
	Pending  map[string]int
	Consumed map[string]int
	Total    int
}

// Status counts buffer rows by source party and status.
func (b *bridge) Status(ctx context.Context) (*BufferStatus, error) {
	rows, err := b.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	st := &BufferStatus{
		Pending:  make(map[string]int),
		Consumed: make(map[string]int),
		Total:    len(rows),
	}
	for _, row := range rows {
		if row.Status == buffer.StatusConsumed {
			st.Consumed[row.Source]++
		} else {
			st.Pending[row.Source]++
		}
	}
	return st, nil
}
