package reconcile

import (
	"context"

	"github.com/agentstation/contactbridge/pkg/buffer"
	"github.com/agentstation/contactbridge/pkg/contacts"
	"github.com/agentstation/contactbridge/pkg/directory"
	"github.com/agentstation/contactbridge/pkg/errors"
	"github.com/agentstation/contactbridge/pkg/logging"
)

// PullProcessor is the pull side: it consumes the other party's pending
// buffer rows, merging each into a matching local record or creating a new
// one under the sync label.
type PullProcessor struct {
	party string
	label string
	dir   directory.Directory
	store buffer.Store
}

// NewPullProcessor creates the pull processor for one party.
func NewPullProcessor(party, label string, dir directory.Directory, store buffer.Store) *PullProcessor {
	return &PullProcessor{
		party: party,
		label: label,
		dir:   dir,
		store: store,
	}
}

// Pull processes every pending row published by the other party.
//
// A row whose payload does not decode stays Pending and is retried next
// run; the malformation may be transient. Every row that decodes is marked
// Consumed whether its directory write succeeds or fails: the run
// terminates rather than reprocessing a permanently-failing row forever,
// and the failure is surfaced through the result and the run log.
func (p *PullProcessor) Pull(ctx context.Context) (*Result, error) {
	log := logging.Ctx(ctx)
	res := &Result{}

	rows, err := p.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	locals, err := p.dir.ListAll(ctx)
	if err != nil {
		return nil, errors.WrapDirectory("list", "", err)
	}
	index := NewIndex(locals)

	for _, row := range rows {
		if row.Source == p.party || row.Status != buffer.StatusPending {
			continue
		}

		incoming, err := contacts.Decode(row.Payload)
		if err != nil {
			// Left Pending on purpose: retried indefinitely.
			res.Fail(errors.NewRowError(row.Fingerprint, "decoding payload", err))
			log.Warn().Err(err).Str("fingerprint", row.Fingerprint).Msg("Malformed buffer row")
			continue
		}

		if match := index.FindMatch(incoming); match != nil {
			p.mergeInto(ctx, match, incoming, res)
		} else {
			p.create(ctx, incoming, res)
		}

		if err := p.store.MarkConsumed(ctx, row.Fingerprint); err != nil {
			res.Fail(errors.NewRowError(row.Fingerprint, "marking consumed", err))
		}
	}

	log.Info().
		Int("new", res.New).
		Int("merged", res.Merged).
		Int("failed", res.Failed).
		Msg("Pull phase complete")
	return res, nil
}

// mergeInto merges the incoming record into the matched local record and
// updates the directory. The concurrency token is refreshed immediately
// before the write; one obtained at indexing time may already be stale.
func (p *PullProcessor) mergeInto(ctx context.Context, match, incoming *contacts.ContactRecord, res *Result) {
	log := logging.Ctx(ctx)

	merged := Merge(match, incoming)
	token, err := p.dir.RefreshToken(ctx, match.ResourceID)
	if err == nil {
		err = p.dir.Update(ctx, match.ResourceID, token, merged)
	}
	if err != nil {
		res.Fail(errors.WrapDirectory("update", match.ResourceID, err))
		log.Warn().Err(err).Str("id", match.ResourceID).Msg("Directory update failed")
		return
	}
	res.Merged++
}

// create inserts the incoming record as a new local record and adds it to
// the sync label. At-most-once-attempt: no retry on failure.
func (p *PullProcessor) create(ctx context.Context, incoming *contacts.ContactRecord, res *Result) {
	log := logging.Ctx(ctx)

	id, err := p.dir.Create(ctx, incoming)
	if err == nil {
		err = p.dir.AddToLabel(ctx, id, p.label)
	}
	if err != nil {
		res.Fail(errors.WrapDirectory("create", id, err))
		log.Warn().Err(err).Msg("Directory create failed")
		return
	}
	res.New++
}
