package transform

import "github.com/sweatstack/bridge/payload"

// Person maps a Pike13 person record onto the CRM contact schema.
// Identity fields map directly; all Pike13-specific identifiers land in
// customFields under the pike13_ prefix.
func Person(src payload.Map) payload.Map {
	return payload.Map{
		"firstName": src.Value("first_name"),
		"lastName":  src.Value("last_name"),
		"email":     src.Value("email"),
		"phone":     src.Value("phone"),
		"tags":      []string{SourceTag},
		"customFields": payload.Map{
			FieldPrefix + "id":            payload.Stringify(src.Value("id")),
			FieldPrefix + "joined_at":     src.Value("joined_at"),
			FieldPrefix + "is_member":     src.Value("is_member"),
			FieldPrefix + "location_name": src.Child("location").Value("name"),
			FieldPrefix + "timezone":      src.Value("timezone"),
		},
	}
}
