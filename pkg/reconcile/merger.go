package reconcile

import (
	"encoding/json"
	"sort"

	"github.com/agentstation/contactbridge/pkg/contacts"
)

// Merge combines an existing local record with an incoming record and
// returns a new composed record; neither input is modified. The existing
// record's directory identifier and concurrency token are retained.
//
// Single-valued groups: the incoming group replaces the existing one when
// non-empty, otherwise the existing value stays.
//
// Multi-valued groups: two-pass reconciliation rather than
// concatenate-then-dedup. Pass one keys every existing item by its primary
// value; pass two overlays the incoming items, replacing entries whose key
// matches (so a label change on a known value propagates) and appending
// entries with new keys. Naive value dedup would silently drop those label
// updates.
func Merge(existing, incoming *contacts.ContactRecord) *contacts.ContactRecord {
	out := existing.Clone()

	if len(incoming.Names) > 0 {
		out.Names = append([]contacts.Name(nil), incoming.Names...)
	}
	for _, g := range contacts.SingleValued() {
		if items := incoming.Items(g); len(items) > 0 {
			out.SetItems(g, contacts.CloneItems(items))
		}
	}

	for _, g := range contacts.MultiValued() {
		out.SetItems(g, overlayItems(existing.Items(g), incoming.Items(g)))
	}

	return out
}

// overlayItems performs the keyed two-pass merge of one multi-valued
// group. Order is stable: existing items keep their positions, incoming
// items with new keys append in their own order.
func overlayItems(existing, incoming []contacts.Item) []contacts.Item {
	if len(existing) == 0 && len(incoming) == 0 {
		return nil
	}

	keys := make([]string, 0, len(existing)+len(incoming))
	byKey := make(map[string]contacts.Item, len(existing)+len(incoming))

	for _, it := range existing {
		k := itemKey(it)
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = it
	}
	for _, it := range incoming {
		k := itemKey(it)
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = it
	}

	out := make([]contacts.Item, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return contacts.CloneItems(out)
}

// itemKey identifies an item within its group: the primary value, falling
// back to the formatted value, then to a structural key over the
// remaining parts.
func itemKey(it contacts.Item) string {
	if it.Value != "" {
		return it.Value
	}
	if it.Formatted != "" {
		return it.Formatted
	}
	return structuralKey(it.Extra)
}

func structuralKey(extra map[string]string) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make(map[string]string, len(extra))
	for _, k := range keys {
		parts[k] = extra[k]
	}
	b, _ := json.Marshal(parts)
	return string(b)
}
