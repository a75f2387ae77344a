package lock

import (
	"context"
	"time"

	"github.com/agentstation/contactbridge/pkg/errors"
)

// Mutex is an in-process Locker for tests and single-host deployments
// where both parties run in one process.
type Mutex struct {
	ch chan struct{}
}

// NewMutex creates an unheld in-process lock.
func NewMutex() *Mutex {
	return &Mutex{ch: make(chan struct{}, 1)}
}

// Acquire takes the lock, waiting up to timeout.
func (m *Mutex) Acquire(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m.ch <- struct{}{}:
		return nil
	case <-timer.C:
		return errors.NewLockError("sync", timeout.String(), errors.ErrLockTimeout)
	case <-ctx.Done():
		return errors.NewLockError("sync", timeout.String(), ctx.Err())
	}
}

// Release frees the lock.
func (m *Mutex) Release() error {
	select {
	case <-m.ch:
		return nil
	default:
		return errors.ErrLockNotHeld
	}
}
