package bridge

import "net/http"

// Status is the terminal state of one processed request.
type Status int

const (
	// StatusDelivered means the transformed record reached the CRM.
	StatusDelivered Status = iota

	// StatusNoOp means the event was acknowledged without forwarding:
	// unknown topic, empty data list, or no configured destination.
	// The source must not redeliver these.
	StatusNoOp

	// StatusRejected means signature verification failed.
	StatusRejected

	// StatusErrored means delivery failed after exhausting the retry
	// budget, or the body could not be parsed.
	StatusErrored
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusNoOp:
		return "noop"
	case StatusRejected:
		return "rejected"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// HTTPStatus maps a terminal status onto the response code returned to
// Pike13. NoOps acknowledge with 200 so the source does not retry them.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusDelivered, StatusNoOp:
		return http.StatusOK
	case StatusRejected:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Request is one inbound webhook request: the raw body exactly as
// received (signatures are computed over raw bytes) and the value of the
// signature header.
type Request struct {
	Body      []byte
	Signature string
}

// Result is the terminal outcome of processing one request.
type Result struct {
	// Status is the terminal pipeline state.
	Status Status

	// Topic is the event topic, when the body parsed far enough to know it.
	Topic string

	// Message is the human-readable outcome returned to the caller.
	Message string

	// Attempts is how many delivery attempts the winning delivery took.
	// Zero for non-delivered outcomes.
	Attempts int

	// Err carries the underlying cause for StatusErrored.
	Err error
}
