package people

import "github.com/agentstation/contactbridge/pkg/contacts"

// toRecord converts a wire person into a contact record.
func toRecord(p person) *contacts.ContactRecord {
	rec := &contacts.ContactRecord{
		ResourceID: p.ResourceName,
		Token:      p.Etag,
	}
	for _, n := range p.Names {
		rec.Names = append(rec.Names, contacts.Name{
			Given:            n.GivenName,
			Middle:           n.MiddleName,
			Family:           n.FamilyName,
			Prefix:           n.HonorificPrefix,
			Suffix:           n.HonorificSuffix,
			Display:          n.DisplayName,
			DisplayLastFirst: n.DisplayNameLastFirst,
		})
	}

	rec.Nicknames = toItems(p.Nicknames)
	rec.Organizations = toItems(p.Organizations)
	rec.Birthdays = toItems(p.Birthdays)
	rec.Biographies = toItems(p.Biographies)
	rec.Occupations = toItems(p.Occupations)
	rec.Interests = toItems(p.Interests)
	rec.Locales = toItems(p.Locales)
	rec.Locations = toItems(p.Locations)
	rec.Genders = toItems(p.Genders)

	rec.Emails = toItems(p.EmailAddresses)
	rec.Phones = toItems(p.PhoneNumbers)
	rec.Addresses = toItems(p.Addresses)
	rec.URLs = toItems(p.URLs)
	rec.Relations = toItems(p.Relations)
	rec.Events = toItems(p.Events)
	rec.IMClients = toItems(p.IMClients)
	rec.Keywords = toItems(p.Keywords)
	rec.UserDefined = toItems(p.UserDefined)
	return rec
}

// fromRecord converts a contact record into a wire person. The etag rides
// in the body on updates, per the API's concurrency protocol.
func fromRecord(rec *contacts.ContactRecord) person {
	p := person{
		ResourceName: rec.ResourceID,
		Etag:         rec.Token,
	}
	for _, n := range rec.Names {
		p.Names = append(p.Names, wireName{
			GivenName:            n.Given,
			MiddleName:           n.Middle,
			FamilyName:           n.Family,
			HonorificPrefix:      n.Prefix,
			HonorificSuffix:      n.Suffix,
			DisplayName:          n.Display,
			DisplayNameLastFirst: n.DisplayLastFirst,
		})
	}

	p.Nicknames = fromItems(rec.Nicknames)
	p.Organizations = fromItems(rec.Organizations)
	p.Birthdays = fromItems(rec.Birthdays)
	p.Biographies = fromItems(rec.Biographies)
	p.Occupations = fromItems(rec.Occupations)
	p.Interests = fromItems(rec.Interests)
	p.Locales = fromItems(rec.Locales)
	p.Locations = fromItems(rec.Locations)
	p.Genders = fromItems(rec.Genders)

	p.EmailAddresses = fromItems(rec.Emails)
	p.PhoneNumbers = fromItems(rec.Phones)
	p.Addresses = fromItems(rec.Addresses)
	p.URLs = fromItems(rec.URLs)
	p.Relations = fromItems(rec.Relations)
	p.Events = fromItems(rec.Events)
	p.IMClients = fromItems(rec.IMClients)
	p.Keywords = fromItems(rec.Keywords)
	p.UserDefined = fromItems(rec.UserDefined)
	return p
}

func toItems(items []wireItem) []contacts.Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]contacts.Item, 0, len(items))
	for _, it := range items {
		out = append(out, contacts.Item{
			Value:     it.Value,
			Label:     it.Type,
			Formatted: it.FormattedType,
			Extra:     copyParts(it.Parts),
		})
	}
	return out
}

func fromItems(items []contacts.Item) []wireItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]wireItem, 0, len(items))
	for _, it := range items {
		out = append(out, wireItem{
			Value:         it.Value,
			Type:          it.Label,
			FormattedType: it.Formatted,
			Parts:         copyParts(it.Extra),
		})
	}
	return out
}

func copyParts(parts map[string]string) map[string]string {
	if len(parts) == 0 {
		return nil
	}
	out := make(map[string]string, len(parts))
	for k, v := range parts {
		out[k] = v
	}
	return out
}
