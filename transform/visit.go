package transform

import (
	"fmt"

	"github.com/sweatstack/bridge/payload"
)

// defaultVisitTitle is used when the event occurrence carries no name.
const defaultVisitTitle = "Pike13 Visit"

// visitCompletedState is the Pike13 state that maps to a confirmed
// appointment; every other state (including unknown ones) maps to "new".
const visitCompletedState = "completed"

// Visit maps a Pike13 visit record onto the CRM appointment schema.
func Visit(src payload.Map) payload.Map {
	person := src.Child("person")
	occurrence := src.Child("event_occurrence")

	status := "new"
	if src.String("state") == visitCompletedState {
		status = "confirmed"
	}

	notes := fmt.Sprintf("Pike13 visit %s. Service: %s. Location: %s.",
		payload.StringifyOr(src.Value("id"), "unknown"),
		src.Child("service").StringOr("name", "unknown"),
		src.Child("location").StringOr("name", "unknown"),
	)

	return payload.Map{
		"email":             person.Value("email"),
		"title":             occurrence.StringOr("name", defaultVisitTitle),
		"appointmentStatus": status,
		"notes":             notes,
		"customFields": payload.Map{
			FieldPrefix + "visit_id":            payload.Stringify(src.Value("id")),
			FieldPrefix + "person_id":           payload.Stringify(person.Value("id")),
			FieldPrefix + "event_occurrence_id": payload.Stringify(occurrence.Value("id")),
			FieldPrefix + "paid":                src.Bool("paid"),
		},
	}
}
