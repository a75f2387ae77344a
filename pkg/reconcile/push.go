package reconcile

import (
	"context"

	"github.com/agentstation/contactbridge/pkg/buffer"
	"github.com/agentstation/contactbridge/pkg/contacts"
	"github.com/agentstation/contactbridge/pkg/digest"
	"github.com/agentstation/contactbridge/pkg/directory"
	"github.com/agentstation/contactbridge/pkg/errors"
	"github.com/agentstation/contactbridge/pkg/logging"
)

// BufferReconciler is the push side: it upserts this party's labeled
// records into the buffer, skipping unchanged records and echoes of
// records received from the other party. It never deletes a row.
type BufferReconciler struct {
	party  string
	label  string
	groups []contacts.Group
	dir    directory.Directory
	store  buffer.Store
}

// NewBufferReconciler creates the push processor for one party.
func NewBufferReconciler(party, label string, groups []contacts.Group, dir directory.Directory, store buffer.Store) *BufferReconciler {
	return &BufferReconciler{
		party:  party,
		label:  label,
		groups: groups,
		dir:    dir,
		store:  store,
	}
}

// Push reconciles every labeled local record against the buffer. Per
// record: skip when its digest is in the echo set (received from the other
// party and unchanged since receipt), skip when the stored row's digest
// matches (unchanged since last push), otherwise upsert the row with
// status Pending so the other party re-pulls it. Per-record failures are
// recorded and do not abort the phase; a failed buffer read does.
func (b *BufferReconciler) Push(ctx context.Context) (*Result, error) {
	log := logging.Ctx(ctx)
	res := &Result{}

	rows, err := b.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	byFingerprint := make(map[string]buffer.Row, len(rows))
	echo := make(map[string]bool)
	for _, row := range rows {
		byFingerprint[row.Fingerprint] = row
		if row.Source != b.party && row.Status == buffer.StatusConsumed {
			echo[row.Digest] = true
		}
	}

	records, err := b.dir.ListByLabel(ctx, b.label)
	if err != nil {
		return nil, errors.WrapDirectory("list", b.label, err)
	}

	for _, rec := range records {
		outgoing := contacts.Filter(rec, b.groups)
		d := digest.Digest(outgoing)
		if echo[d] {
			log.Debug().Str("digest", d).Msg("Skipping echo of foreign record")
			continue
		}

		fp := digest.Fingerprint(rec, b.party)
		if row, ok := byFingerprint[fp]; ok && row.Digest == d {
			continue
		}

		payload, err := digest.Normalize(outgoing).Encode()
		if err != nil {
			res.Fail(errors.NewRowError(fp, "encoding payload", err))
			continue
		}

		row := buffer.Row{
			Fingerprint: fp,
			Source:      b.party,
			Payload:     payload,
			Status:      buffer.StatusPending,
			Digest:      d,
		}
		if err := b.store.Upsert(ctx, row); err != nil {
			res.Fail(errors.NewRowError(fp, "upserting row", err))
			continue
		}
		res.Pushed++
		log.Debug().Str("fingerprint", fp).Str("digest", d).Msg("Pushed record to buffer")
	}

	log.Info().
		Int("pushed", res.Pushed).
		Int("failed", res.Failed).
		Msg("Push phase complete")
	return res, nil
}
