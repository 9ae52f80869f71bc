// Package transform maps Pike13 webhook records onto the CRM schema.
//
// Each topic family has one pure transformer: the same input always
// produces the same output, and a missing nested object at any depth
// degrades the dependent field to nil instead of panicking. Source
// identifiers are carried in a customFields block, each key namespaced
// with the "pike13_" prefix, with numeric IDs stringified.
package transform

import "github.com/sweatstack/bridge/payload"

// SourceTag is the fixed label attached to every contact created through
// the bridge, identifying the integration source.
const SourceTag = "pike13"

// FieldPrefix namespaces all source identifiers inside customFields.
const FieldPrefix = "pike13_"

// Func is a topic transformer. It must be pure and must never panic on
// missing fields.
type Func func(src payload.Map) payload.Map

// dollars converts an integer minor-unit (cents) amount under key into a
// decimal major-unit amount. Returns nil when the field is absent or not
// a number.
func dollars(src payload.Map, key string) any {
	cents, ok := src.Number(key)
	if !ok {
		return nil
	}
	return cents / 100
}
