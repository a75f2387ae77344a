package digest

import (
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/contactbridge/pkg/contacts"
)

// Discriminator kinds used in fingerprints, in priority order.
const (
	kindEmail  = "email"
	kindName   = "name"
	kindID     = "id"
	kindRandom = "rand"
)

// Fingerprint derives the buffer key for a record owned by the given party:
// "{party}:{kind}:{value}". The discriminator is the primary email
// (lower-cased), then the primary display name (lower-cased), then the
// directory identifier. A record with none of the three gets a random
// token: such a record has no stable dedup key and is re-inserted as a new
// buffer row on every push. Total function, never returns "".
func Fingerprint(r *contacts.ContactRecord, party string) string {
	if email := r.PrimaryEmail(); email != "" {
		return join(party, kindEmail, strings.ToLower(email))
	}
	if name := r.DisplayName(); name != "" {
		return join(party, kindName, strings.ToLower(name))
	}
	if r.ResourceID != "" {
		return join(party, kindID, r.ResourceID)
	}
	return join(party, kindRandom, uuid.NewString())
}

func join(party, kind, value string) string {
	return party + ":" + kind + ":" + value
}
