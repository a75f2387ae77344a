// Package contacts defines the contact record model shared by both parties.
// A record is a set of named field groups. Multi-valued groups hold zero or
// more items (emails, phones, ...); single-valued groups hold at most one
// logical value (name, birthday, ...) even when list-shaped in transport.
package contacts

import "encoding/json"

// ContactRecord is one contact as held by a party's directory.
//
// ResourceID and Token are assigned by the owning directory. They are
// pass-through concerns: the reconciliation core strips them before
// digesting and never transfers them across parties.
type ContactRecord struct {
	ResourceID string `json:"resourceId,omitempty"`
	Token      string `json:"token,omitempty"`

	Names []Name `json:"names,omitempty"`

	// Single-valued groups
	Nicknames     []Item `json:"nicknames,omitempty"`
	Organizations []Item `json:"organizations,omitempty"`
	Birthdays     []Item `json:"birthdays,omitempty"`
	Biographies   []Item `json:"biographies,omitempty"`
	Occupations   []Item `json:"occupations,omitempty"`
	Interests     []Item `json:"interests,omitempty"`
	Locales       []Item `json:"locales,omitempty"`
	Locations     []Item `json:"locations,omitempty"`
	Genders       []Item `json:"genders,omitempty"`

	// Multi-valued groups
	Emails      []Item `json:"emailAddresses,omitempty"`
	Phones      []Item `json:"phoneNumbers,omitempty"`
	Addresses   []Item `json:"addresses,omitempty"`
	URLs        []Item `json:"urls,omitempty"`
	Relations   []Item `json:"relations,omitempty"`
	Events      []Item `json:"events,omitempty"`
	IMClients   []Item `json:"imClients,omitempty"`
	Keywords    []Item `json:"keywords,omitempty"`
	UserDefined []Item `json:"userDefined,omitempty"`
}

// Item is one entry in a field group.
type Item struct {
	// Value is the primary value (the email address, the phone number).
	Value string `json:"value,omitempty"`

	// Label is the user-visible label or type ("home", "work", "mobile").
	Label string `json:"label,omitempty"`

	// Formatted is a directory-derived rendering of Value or Label.
	// Volatile: the upstream directory rewrites it on round-trip, so
	// normalization strips it before digesting.
	Formatted string `json:"formatted,omitempty"`

	// Extra holds secondary structured parts, such as the street and city
	// of an address or the title and department of an organization.
	Extra map[string]string `json:"extra,omitempty"`
}

// Name is the structured name group. Display and DisplayLastFirst are
// derived by the directory from the structured parts and are stripped
// during normalization.
type Name struct {
	Given            string `json:"givenName,omitempty"`
	Middle           string `json:"middleName,omitempty"`
	Family           string `json:"familyName,omitempty"`
	Prefix           string `json:"honorificPrefix,omitempty"`
	Suffix           string `json:"honorificSuffix,omitempty"`
	Display          string `json:"displayName,omitempty"`
	DisplayLastFirst string `json:"displayNameLastFirst,omitempty"`
}

// DisplayString returns the display form of the name: the directory-derived
// Display when present, otherwise the structured parts joined in order.
func (n Name) DisplayString() string {
	if n.Display != "" {
		return n.Display
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{n.Given, n.Middle, n.Family} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return joinSpace(parts)
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

// PrimaryEmail returns the value of the first email item, or "".
func (r *ContactRecord) PrimaryEmail() string {
	if len(r.Emails) == 0 {
		return ""
	}
	return r.Emails[0].Value
}

// DisplayName returns the display form of the first name group entry, or "".
func (r *ContactRecord) DisplayName() string {
	if len(r.Names) == 0 {
		return ""
	}
	return r.Names[0].DisplayString()
}

// Clone returns a deep copy of the record.
func (r *ContactRecord) Clone() *ContactRecord {
	if r == nil {
		return nil
	}
	out := &ContactRecord{
		ResourceID: r.ResourceID,
		Token:      r.Token,
	}
	if len(r.Names) > 0 {
		out.Names = append([]Name(nil), r.Names...)
	}
	for _, g := range AllGroups() {
		if g == GroupNames {
			continue
		}
		out.setItems(g, CloneItems(r.items(g)))
	}
	return out
}

// CloneItems returns a deep copy of an item slice.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		if it.Extra != nil {
			out[i].Extra = make(map[string]string, len(it.Extra))
			for k, v := range it.Extra {
				out[i].Extra[k] = v
			}
		}
	}
	return out
}

// Encode serializes the record for transport through the buffer.
func (r *ContactRecord) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Decode deserializes a buffer payload into a record.
func Decode(data []byte) (*ContactRecord, error) {
	var r ContactRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
