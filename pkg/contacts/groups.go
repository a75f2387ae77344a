package contacts

// Group identifies one named field group of a contact record.
type Group string

// String returns the string representation of a group name.
func (g Group) String() string { return string(g) }

// Field group names. The names double as the keys used in the canonical
// serialization, so they must stay stable across releases.
const (
	GroupNames         Group = "names"
	GroupNicknames     Group = "nicknames"
	GroupOrganizations Group = "organizations"
	GroupBirthdays     Group = "birthdays"
	GroupBiographies   Group = "biographies"
	GroupOccupations   Group = "occupations"
	GroupInterests     Group = "interests"
	GroupLocales       Group = "locales"
	GroupLocations     Group = "locations"
	GroupGenders       Group = "genders"
	GroupEmails        Group = "emailAddresses"
	GroupPhones        Group = "phoneNumbers"
	GroupAddresses     Group = "addresses"
	GroupURLs          Group = "urls"
	GroupRelations     Group = "relations"
	GroupEvents        Group = "events"
	GroupIMClients     Group = "imClients"
	GroupKeywords      Group = "keywords"
	GroupUserDefined   Group = "userDefined"
)

// SingleValued returns the groups that carry at most one logical value.
// Incoming data replaces the whole group on merge. Names is part of this
// class but is typed separately (see ContactRecord.Names).
func SingleValued() []Group {
	return []Group{
		GroupNicknames, GroupOrganizations, GroupBirthdays, GroupBiographies,
		GroupOccupations, GroupInterests, GroupLocales, GroupLocations,
		GroupGenders,
	}
}

// MultiValued returns the groups that carry zero or more items, merged with
// the keyed two-pass overlay.
func MultiValued() []Group {
	return []Group{
		GroupEmails, GroupPhones, GroupAddresses, GroupURLs, GroupRelations,
		GroupEvents, GroupIMClients, GroupKeywords, GroupUserDefined,
	}
}

// AllGroups returns every field group, names included.
func AllGroups() []Group {
	out := []Group{GroupNames}
	out = append(out, SingleValued()...)
	out = append(out, MultiValued()...)
	return out
}

// Items returns the item slice for a group. GroupNames has no item
// representation and returns nil; use the Names field directly.
func (r *ContactRecord) Items(g Group) []Item { return r.items(g) }

// SetItems replaces the item slice for a group. GroupNames is a no-op.
func (r *ContactRecord) SetItems(g Group, items []Item) { r.setItems(g, items) }

func (r *ContactRecord) items(g Group) []Item {
	switch g {
	case GroupNicknames:
		return r.Nicknames
	case GroupOrganizations:
		return r.Organizations
	case GroupBirthdays:
		return r.Birthdays
	case GroupBiographies:
		return r.Biographies
	case GroupOccupations:
		return r.Occupations
	case GroupInterests:
		return r.Interests
	case GroupLocales:
		return r.Locales
	case GroupLocations:
		return r.Locations
	case GroupGenders:
		return r.Genders
	case GroupEmails:
		return r.Emails
	case GroupPhones:
		return r.Phones
	case GroupAddresses:
		return r.Addresses
	case GroupURLs:
		return r.URLs
	case GroupRelations:
		return r.Relations
	case GroupEvents:
		return r.Events
	case GroupIMClients:
		return r.IMClients
	case GroupKeywords:
		return r.Keywords
	case GroupUserDefined:
		return r.UserDefined
	}
	return nil
}

func (r *ContactRecord) setItems(g Group, items []Item) {
	switch g {
	case GroupNicknames:
		r.Nicknames = items
	case GroupOrganizations:
		r.Organizations = items
	case GroupBirthdays:
		r.Birthdays = items
	case GroupBiographies:
		r.Biographies = items
	case GroupOccupations:
		r.Occupations = items
	case GroupInterests:
		r.Interests = items
	case GroupLocales:
		r.Locales = items
	case GroupLocations:
		r.Locations = items
	case GroupGenders:
		r.Genders = items
	case GroupEmails:
		r.Emails = items
	case GroupPhones:
		r.Phones = items
	case GroupAddresses:
		r.Addresses = items
	case GroupURLs:
		r.URLs = items
	case GroupRelations:
		r.Relations = items
	case GroupEvents:
		r.Events = items
	case GroupIMClients:
		r.IMClients = items
	case GroupKeywords:
		r.Keywords = items
	case GroupUserDefined:
		r.UserDefined = items
	}
}

// Filter returns a copy of the record restricted to the given groups.
// Groups not listed are emptied. ResourceID and Token are preserved.
func Filter(r *ContactRecord, groups []Group) *ContactRecord {
	keep := make(map[Group]bool, len(groups))
	for _, g := range groups {
		keep[g] = true
	}
	out := r.Clone()
	if !keep[GroupNames] {
		out.Names = nil
	}
	for _, g := range AllGroups() {
		if g == GroupNames || keep[g] {
			continue
		}
		out.setItems(g, nil)
	}
	return out
}
