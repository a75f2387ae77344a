package contactbridge

import (
	"time"

	"github.com/agentstation/contactbridge/pkg/buffer"
	"github.com/agentstation/contactbridge/pkg/directory"
	"github.com/agentstation/contactbridge/pkg/errors"
	"github.com/agentstation/contactbridge/pkg/lock"
	"github.com/agentstation/contactbridge/pkg/runlog"
)

// Option is a function that configures a Bridge instance.
type Option func(*bridge) error

// WithDirectory sets the contact directory collaborator. Required.
func WithDirectory(dir directory.Directory) Option {
	return func(b *bridge) error {
		if dir == nil {
			return errors.NewConfigError("directory", "directory cannot be nil")
		}
		b.dir = dir
		return nil
	}
}

// WithBufferStore sets the buffer collaborator. Required.
func WithBufferStore(store buffer.Store) Option {
	return func(b *bridge) error {
		if store == nil {
			return errors.NewConfigError("buffer", "buffer store cannot be nil")
		}
		b.store = store
		return nil
	}
}

// WithLocker sets the mutual-exclusion collaborator. Required.
func WithLocker(locker lock.Locker) Option {
	return func(b *bridge) error {
		if locker == nil {
			return errors.NewConfigError("lock", "locker cannot be nil")
		}
		b.locker = locker
		return nil
	}
}

// WithRunLog sets the run-log sink. Optional; defaults to an in-memory
// sink.
func WithRunLog(sink runlog.Sink) Option {
	return func(b *bridge) error {
		if sink == nil {
			return errors.NewConfigError("runlog", "run log sink cannot be nil")
		}
		b.sink = sink
		return nil
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *bridge) error {
		b.now = now
		return nil
	}
}

// SyncOption configures a single sync run.
type SyncOption func(*syncOptions)

type syncOptions struct {
	direction runlog.Direction
}

func newSyncOptions(opts ...SyncOption) *syncOptions {
	o := &syncOptions{direction: runlog.DirectionSync}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDirection restricts the run to one phase: push or pull. The default
// runs both, pull first.
func WithDirection(d runlog.Direction) SyncOption {
	return func(o *syncOptions) {
		o.direction = d
	}
}
