package contactbridge

import (
	"context"
	"strings"
	"time"

	"github.com/agentstation/contactbridge/pkg/logging"
	"github.com/agentstation/contactbridge/pkg/reconcile"
	"github.com/agentstation/contactbridge/pkg/runlog"
)

// RunResult is the outcome of one sync run.
type RunResult struct {
	// Party is the identity the run executed as.
	Party string

	// Direction records which phase(s) executed.
	Direction runlog.Direction

	// Pull and Push hold the per-phase statistics; nil when the phase
	// did not execute.
	Pull *reconcile.Result
	Push *reconcile.Result

	// Duration of the whole run, lock wait included.
	Duration time.Duration
}

// Counts sums the phase statistics into run-log columns.
func (r *RunResult) Counts() (pushed, created, merged, failed int) {
	if r.Pull != nil {
		created += r.Pull.New
		merged += r.Pull.Merged
		failed += r.Pull.Failed
	}
	if r.Push != nil {
		pushed += r.Push.Pushed
		failed += r.Push.Failed
	}
	return pushed, created, merged, failed
}

// Sync executes one run as a single critical section.
//
// The run is a small state machine: Idle -> Locking -> Pulling -> Pushing
// -> Idle. Lock timeout aborts from Locking with one run-log entry and no
// buffer access. Once the lock is held the pull phase always hands over to
// the push phase: running pull first guarantees a record just created from
// an incoming row is marked consumed before the push phase computes its
// echo set. The lock is released on every exit path.
func (b *bridge) Sync(ctx context.Context, opts ...SyncOption) (*RunResult, error) {
	options := newSyncOptions(opts...)
	start := b.now()

	ctx = logging.WithParty(ctx, b.cfg.Party)
	ctx = logging.WithDirection(ctx, options.direction.String())
	log := logging.Ctx(ctx)

	// Step 1: acquire the shared lock, bounded by the configured timeout.
	if err := b.locker.Acquire(ctx, b.cfg.LockTimeout); err != nil {
		log.Warn().Err(err).Dur("timeout", b.cfg.LockTimeout).Msg("Sync aborted: lock not acquired")
		b.log(ctx, runlog.Entry{
			Timestamp: b.now().UTC(),
			Account:   b.cfg.Party,
			Direction: options.direction,
			Failed:    1,
			Errors:    runlog.Truncate(err.Error(), b.cfg.ErrorLimit),
		})
		return nil, err
	}

	// Step 2: guarantee release on every exit path.
	defer func() {
		if err := b.locker.Release(); err != nil {
			log.Error().Err(err).Msg("Releasing sync lock failed")
		}
	}()

	res := &RunResult{Party: b.cfg.Party, Direction: options.direction}
	var errs []string

	// Step 3: pull the other party's pending rows.
	if options.direction != runlog.DirectionPush {
		pull := reconcile.NewPullProcessor(b.cfg.Party, b.cfg.Label, b.dir, b.store)
		pres, err := pull.Pull(ctx)
		if err != nil {
			// The pull phase could not run at all. Record it and carry
			// on: push still executes.
			log.Error().Err(err).Msg("Pull phase failed")
			pres = &reconcile.Result{}
			pres.Fail(err)
		}
		res.Pull = pres
		if msg := pres.ErrorText(); msg != "" {
			errs = append(errs, msg)
		}
	}

	// Step 4: push this party's labeled records.
	if options.direction != runlog.DirectionPull {
		push := reconcile.NewBufferReconciler(b.cfg.Party, b.cfg.Label, b.cfg.Groups, b.dir, b.store)
		pres, err := push.Push(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Push phase failed")
			pres = &reconcile.Result{}
			pres.Fail(err)
		}
		res.Push = pres
		if msg := pres.ErrorText(); msg != "" {
			errs = append(errs, msg)
		}
	}

	res.Duration = b.now().Sub(start)

	// Step 5: one run-log row for the run.
	pushed, created, merged, failed := res.Counts()
	b.log(ctx, runlog.Entry{
		Timestamp: b.now().UTC(),
		Account:   b.cfg.Party,
		Direction: options.direction,
		Pushed:    pushed,
		New:       created,
		Merged:    merged,
		Failed:    failed,
		Errors:    runlog.Truncate(strings.Join(errs, "; "), b.cfg.ErrorLimit),
	})

	log.Info().
		Int("pushed", pushed).
		Int("new", created).
		Int("merged", merged).
		Int("failed", failed).
		Dur("duration", res.Duration).
		Msg("Sync run complete")
	return res, nil
}

// log appends a run-log entry and trims the log to the retention window.
// Run-log failures are logged, never propagated: the log is advisory.
func (b *bridge) log(ctx context.Context, entry runlog.Entry) {
	if err := b.sink.Append(ctx, entry); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Appending run log entry failed")
		return
	}
	if b.cfg.LogRetention > 0 {
		if err := b.sink.Trim(ctx, b.cfg.LogRetention); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Trimming run log failed")
		}
	}
}
