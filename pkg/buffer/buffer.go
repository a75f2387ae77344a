// Package buffer defines the shared intermediary both parties reconcile
// through. A row carries one contact from its owning party to the other;
// rows are keyed by fingerprint, updated in place, and never deleted by
// the reconciliation core.
package buffer

import "context"

// Status marks whether the other party has processed a row.
type Status string

const (
	// StatusPending means the row awaits pickup by the other party.
	// Stored as the empty string, matching the on-sheet representation.
	StatusPending Status = ""

	// StatusConsumed means the other party has processed the row.
	StatusConsumed Status = "imported"
)

// Row is one buffer entry. The five fields mirror the tabular schema:
// fingerprint | source | data | status | hash.
type Row struct {
	// Fingerprint keys the row. Stable across runs for the same logical
	// contact of one party, unique among that party's rows.
	Fingerprint string

	// Source is the identifier of the party that published the row.
	Source string

	// Payload is the serialized contact record.
	Payload []byte

	// Status transitions Pending -> Consumed exactly once, performed by
	// the other party. A re-publish with a changed digest resets it.
	Status Status

	// Digest is the change-detection digest of the normalized payload.
	Digest string
}

// Store is the buffer collaborator. Implementations persist rows in some
// tabular medium; the core never assumes anything beyond these three
// operations.
type Store interface {
	// ReadAll returns every row in stable order.
	ReadAll(ctx context.Context) ([]Row, error)

	// Upsert inserts the row or overwrites the row with the same
	// fingerprint in place.
	Upsert(ctx context.Context, row Row) error

	// MarkConsumed sets the status of the row with the given fingerprint
	// to Consumed. Unknown fingerprints are a no-op.
	MarkConsumed(ctx context.Context, fingerprint string) error
}
