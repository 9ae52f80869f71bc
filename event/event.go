// Package event defines the inbound Pike13 webhook event.
package event

import (
	"encoding/json"
	"errors"

	"github.com/sweatstack/bridge/payload"
)

// ErrMissingTopic is returned when an event body carries no topic.
var ErrMissingTopic = errors.New("event: missing topic")

// Event is one inbound Pike13 webhook event. It is immutable once
// parsed and discarded after processing.
type Event struct {
	// Topic is the dot-separated Pike13 topic (e.g. "person.created").
	Topic string `json:"topic"`

	// WebhookID identifies the Pike13 webhook subscription.
	WebhookID string `json:"webhook_id"`

	// BusinessID identifies the Pike13 business that emitted the event.
	BusinessID string `json:"business_id"`

	// Data is the topic-specific payload block.
	Data payload.Map `json:"data"`
}

// Parse decodes a raw webhook body into an Event. Beyond well-formed
// JSON, only topic presence is checked; everything else is optional.
func Parse(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, err
	}
	if evt.Topic == "" {
		return nil, ErrMissingTopic
	}
	return &evt, nil
}

// First returns the first element of the named list inside the data
// block. It returns false when the list is absent or empty, which the
// dispatcher treats as "no data to process".
func (e *Event) First(listKey string) (payload.Map, bool) {
	return e.Data.FirstObject(listKey)
}

// Previous returns the prior-state snapshot Pike13 attaches to
// "updated" topics. The shape is opaque and passed through verbatim.
func (e *Event) Previous() (any, bool) {
	return e.Data.Get("previous")
}
