// Package digest implements change detection for contact records: a
// normalization pass that strips directory-injected fields, a deterministic
// order-independent digest over the normalized record, and a stable
// fingerprint that keys a record's buffer row across runs.
package digest

import (
	"github.com/agentstation/contactbridge/pkg/contacts"
)

// Normalize returns a copy of the record with every field the upstream
// directory injects or rewrites on a read/write round-trip removed:
// directory identifiers and concurrency tokens, formatted renderings of
// item values and labels, and the derived display-name variants of the
// name group. Two syntactically different but semantically identical
// records normalize to equal values.
func Normalize(r *contacts.ContactRecord) *contacts.ContactRecord {
	out := r.Clone()
	out.ResourceID = ""
	out.Token = ""

	for i := range out.Names {
		out.Names[i].Display = ""
		out.Names[i].DisplayLastFirst = ""
	}

	for _, g := range contacts.AllGroups() {
		if g == contacts.GroupNames {
			continue
		}
		items := out.Items(g)
		for i := range items {
			items[i].Formatted = ""
		}
	}
	return out
}
