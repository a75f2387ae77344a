package people

// Wire types for the People-style contacts API. The API lists contacts as
// person resources with an etag, per-group item lists, and contact-group
// memberships; labels are contact groups.

type person struct {
	ResourceName string `json:"resourceName,omitempty"`
	Etag         string `json:"etag,omitempty"`

	Names []wireName `json:"names,omitempty"`

	Nicknames     []wireItem `json:"nicknames,omitempty"`
	Organizations []wireItem `json:"organizations,omitempty"`
	Birthdays     []wireItem `json:"birthdays,omitempty"`
	Biographies   []wireItem `json:"biographies,omitempty"`
	Occupations   []wireItem `json:"occupations,omitempty"`
	Interests     []wireItem `json:"interests,omitempty"`
	Locales       []wireItem `json:"locales,omitempty"`
	Locations     []wireItem `json:"locations,omitempty"`
	Genders       []wireItem `json:"genders,omitempty"`

	EmailAddresses []wireItem `json:"emailAddresses,omitempty"`
	PhoneNumbers   []wireItem `json:"phoneNumbers,omitempty"`
	Addresses      []wireItem `json:"addresses,omitempty"`
	URLs           []wireItem `json:"urls,omitempty"`
	Relations      []wireItem `json:"relations,omitempty"`
	Events         []wireItem `json:"events,omitempty"`
	IMClients      []wireItem `json:"imClients,omitempty"`
	Keywords       []wireItem `json:"keywords,omitempty"`
	UserDefined    []wireItem `json:"userDefined,omitempty"`

	Memberships []membership `json:"memberships,omitempty"`
}

type wireName struct {
	GivenName            string `json:"givenName,omitempty"`
	MiddleName           string `json:"middleName,omitempty"`
	FamilyName           string `json:"familyName,omitempty"`
	HonorificPrefix      string `json:"honorificPrefix,omitempty"`
	HonorificSuffix      string `json:"honorificSuffix,omitempty"`
	DisplayName          string `json:"displayName,omitempty"`
	DisplayNameLastFirst string `json:"displayNameLastFirst,omitempty"`
}

// wireItem is one entry of any item-shaped group. Type is the label slot,
// FormattedType the directory-derived rendering, Parts the secondary
// structured fields (street and city of an address, title and department
// of an organization).
type wireItem struct {
	Value         string            `json:"value,omitempty"`
	Type          string            `json:"type,omitempty"`
	FormattedType string            `json:"formattedType,omitempty"`
	Parts         map[string]string `json:"parts,omitempty"`
}

type membership struct {
	ContactGroupMembership *groupMembership `json:"contactGroupMembership,omitempty"`
}

type groupMembership struct {
	ContactGroupResourceName string `json:"contactGroupResourceName,omitempty"`
}

type contactGroup struct {
	ResourceName string `json:"resourceName,omitempty"`
	Name         string `json:"name,omitempty"`
}

type listResponse struct {
	Connections   []person `json:"connections,omitempty"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type groupListResponse struct {
	ContactGroups []contactGroup `json:"contactGroups,omitempty"`
}

type createGroupRequest struct {
	ContactGroup contactGroup `json:"contactGroup"`
}

type modifyMembersRequest struct {
	ResourceNamesToAdd []string `json:"resourceNamesToAdd,omitempty"`
}
