// Package directory defines the contact directory collaborator: the
// identity-scoped store each party syncs against. The reconciliation core
// consumes this interface; network adapters live under internal/directory.
package directory

import (
	"context"

	"github.com/agentstation/contactbridge/pkg/contacts"
)

// Directory is one party's contact store.
type Directory interface {
	// ListByLabel returns the records carrying the given label, in
	// stable order.
	ListByLabel(ctx context.Context, label string) ([]*contacts.ContactRecord, error)

	// ListAll returns every record. The caller indexes them for matching.
	ListAll(ctx context.Context) ([]*contacts.ContactRecord, error)

	// Create inserts a new record and returns its directory identifier.
	// At-most-once-attempt: implementations must not retry internally.
	Create(ctx context.Context, rec *contacts.ContactRecord) (string, error)

	// Update overwrites the record with the given identifier. The token
	// is the concurrency token obtained from RefreshToken; a stale token
	// fails the update.
	Update(ctx context.Context, id, token string, rec *contacts.ContactRecord) error

	// AddToLabel adds the record to the given label group.
	AddToLabel(ctx context.Context, id, label string) error

	// RefreshToken returns a fresh concurrency token for the record.
	// Call it immediately before Update: tokens obtained earlier in a run
	// may have gone stale under concurrent external modification.
	RefreshToken(ctx context.Context, id string) (string, error)
}
