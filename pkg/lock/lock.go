// Package lock defines the mutual-exclusion collaborator guarding a sync
// run. Both parties contend for one named lock; the whole pull+push
// sequence executes as a single critical section.
package lock

import (
	"context"
	"time"
)

// Locker is the lock collaborator. Acquire blocks up to the timeout and
// then fails; the caller does not retry within the same run. Release must
// be called exactly once per successful Acquire.
type Locker interface {
	Acquire(ctx context.Context, timeout time.Duration) error
	Release() error
}
