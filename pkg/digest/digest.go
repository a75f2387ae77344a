package digest

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/agentstation/contactbridge/pkg/contacts"
)

// Digest computes the change-detection digest of a record. The record is
// normalized first, then serialized deterministically: object keys in
// lexicographic order at every level, and within every field group the
// items ordered by their own serialized form, so neither field order nor
// item order affects the result. The hash is a 32-bit rolling hash; it is
// not cryptographic, only deterministic with a low collision rate at the
// scale of a few thousand records.
func Digest(r *contacts.ContactRecord) string {
	return hashString(Canonical(r))
}

// Canonical returns the deterministic serialization that Digest hashes.
// Exposed for tests and debugging.
func Canonical(r *contacts.ContactRecord) string {
	n := Normalize(r)
	doc := make(map[string]any)

	if items := nameItems(n.Names); len(items) > 0 {
		doc[contacts.GroupNames.String()] = items
	}
	for _, g := range contacts.AllGroups() {
		if g == contacts.GroupNames {
			continue
		}
		if items := itemDocs(n.Items(g)); len(items) > 0 {
			doc[g.String()] = items
		}
	}

	// json.Marshal renders map keys in sorted order, which gives the
	// lexicographic key ordering at the top level; item maps below are
	// rendered the same way.
	b, err := json.Marshal(doc)
	if err != nil {
		// Only map/string/slice values reach the marshaler; this cannot
		// fail for well-formed records.
		return ""
	}
	return string(b)
}

// nameItems converts name entries to ordered serializable maps.
func nameItems(names []contacts.Name) []json.RawMessage {
	docs := make([]json.RawMessage, 0, len(names))
	for _, n := range names {
		m := map[string]string{}
		put(m, "givenName", n.Given)
		put(m, "middleName", n.Middle)
		put(m, "familyName", n.Family)
		put(m, "honorificPrefix", n.Prefix)
		put(m, "honorificSuffix", n.Suffix)
		// Display variants are cleared by Normalize; include them if a
		// caller canonicalizes an unnormalized record on purpose.
		put(m, "displayName", n.Display)
		put(m, "displayNameLastFirst", n.DisplayLastFirst)
		if len(m) == 0 {
			continue
		}
		b, _ := json.Marshal(m)
		docs = append(docs, json.RawMessage(b))
	}
	return sortRaw(docs)
}

// itemDocs converts items to serialized maps sorted by their own
// serialized form, so insertion order never affects the digest.
func itemDocs(items []contacts.Item) []json.RawMessage {
	docs := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		m := map[string]any{}
		if it.Value != "" {
			m["value"] = it.Value
		}
		if it.Label != "" {
			m["label"] = it.Label
		}
		if it.Formatted != "" {
			m["formatted"] = it.Formatted
		}
		if len(it.Extra) > 0 {
			m["extra"] = it.Extra
		}
		if len(m) == 0 {
			continue
		}
		b, _ := json.Marshal(m)
		docs = append(docs, json.RawMessage(b))
	}
	return sortRaw(docs)
}

func sortRaw(docs []json.RawMessage) []json.RawMessage {
	sort.Slice(docs, func(i, j int) bool {
		return string(docs[i]) < string(docs[j])
	})
	return docs
}

func put(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// hashString is the rolling hash over the canonical serialization:
// h = h*31 + byte, truncated to 32 bits, rendered base 36.
func hashString(s string) string {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return strconv.FormatUint(uint64(h), 36)
}
