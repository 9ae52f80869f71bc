package transform

import "github.com/sweatstack/bridge/payload"

// Membership is a passthrough: the raw Pike13 record is forwarded under a
// single key without field-level mapping. The CRM side owns the
// interpretation of membership payloads.
func Membership(src payload.Map) payload.Map {
	return payload.Map{
		"membershipData": map[string]any(src),
	}
}
