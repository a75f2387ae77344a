// Package reconcile implements the reconciliation engine: matching an
// incoming record to zero-or-one local record, merging two records under a
// field-class-specific policy, and the push/pull protocol that decides, per
// record and per buffer row, whether to skip, create, update, or
// re-publish.
package reconcile

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/contactbridge/pkg/contacts"
)

// Index maps every email address and primary display name held by the
// local directory to its record. Built fresh once per run; identity churn
// between runs makes a cached index unsound without further evidence.
type Index struct {
	byEmail map[string]*contacts.ContactRecord
	byName  map[string]*contacts.ContactRecord
}

// NewIndex builds the match index over the local records. On duplicate
// keys the first record wins, keeping lookups deterministic for a given
// listing order.
func NewIndex(records []*contacts.ContactRecord) *Index {
	ix := &Index{
		byEmail: make(map[string]*contacts.ContactRecord),
		byName:  make(map[string]*contacts.ContactRecord),
	}
	for _, rec := range records {
		for _, email := range rec.Emails {
			key := foldKey(email.Value)
			if key == "" {
				continue
			}
			if _, ok := ix.byEmail[key]; !ok {
				ix.byEmail[key] = rec
			}
		}
		if name := foldKey(rec.DisplayName()); name != "" {
			if _, ok := ix.byName[name]; !ok {
				ix.byName[name] = rec
			}
		}
	}
	return ix
}

// FindMatch resolves the incoming record to zero-or-one local record.
//
// A record with no primary display name never matches: email-only matching
// risks false merges between distinct people sharing an address. With
// emails present, each incoming email is looked up in order and a hit is
// accepted only when the candidate's display name also matches,
// case-insensitively; the first such hit wins. With no emails, the display
// name alone decides.
func (ix *Index) FindMatch(incoming *contacts.ContactRecord) *contacts.ContactRecord {
	name := foldKey(incoming.DisplayName())
	if name == "" {
		return nil
	}

	if len(incoming.Emails) > 0 {
		for _, email := range incoming.Emails {
			key := foldKey(email.Value)
			if key == "" {
				continue
			}
			candidate, ok := ix.byEmail[key]
			if !ok {
				continue
			}
			if foldKey(candidate.DisplayName()) == name {
				return candidate
			}
		}
		return nil
	}

	return ix.byName[name]
}

// foldKey normalizes a value for case-insensitive comparison.
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
