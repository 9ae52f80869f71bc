// Package delivery performs outbound webhook delivery with bounded
// retries and exponential backoff.
package delivery

import (
	"fmt"
	"time"

	"github.com/sweatstack/bridge/observability"
)

// Config holds delivery client configuration.
type Config struct {
	// MaxAttempts is the total number of attempts per record, including
	// the first.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt; each further wait
	// doubles it.
	BaseDelay time.Duration

	// Timeout is the HTTP timeout per attempt.
	Timeout time.Duration

	// UserAgent identifies the bridge on outbound requests.
	UserAgent string

	// Metrics and Tracer are optional instrumentation hooks.
	Metrics *observability.Metrics
	Tracer  *observability.Tracer
}

// DefaultConfig returns the stock delivery configuration: three attempts
// with a one-second base delay (waits of 1s then 2s) and a ten-second
// per-attempt timeout.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		Timeout:     10 * time.Second,
		UserAgent:   "SweatstackBridge/1.0",
	}
}

// Outcome describes a successful delivery.
type Outcome struct {
	// StatusCode is the 2xx status returned by the destination.
	StatusCode int

	// Attempts is the 1-indexed attempt that succeeded.
	Attempts int
}

// Error is the terminal failure after the retry budget is exhausted.
type Error struct {
	// Attempts is how many attempts were made.
	Attempts int

	// LastStatus is the HTTP status of the final attempt, 0 on a
	// transport error.
	LastStatus int

	// Cause is the failure of the final attempt.
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("delivery: failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
