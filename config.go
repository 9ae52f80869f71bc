package bridge

import "time"

// Version is stamped into the metadata block of every forwarded record.
const Version = "1.0.0"

// Config holds the configuration for a Bridge instance.
type Config struct {
	// Secret is the shared Pike13 signing secret. Empty disables
	// signature verification.
	Secret string

	// MaxAttempts is the delivery retry budget per event, including the
	// first attempt.
	MaxAttempts int

	// BaseDelay is the wait before the second delivery attempt; each
	// further wait doubles it.
	BaseDelay time.Duration

	// RequestTimeout is the HTTP timeout per delivery attempt.
	RequestTimeout time.Duration

	// UserAgent identifies the bridge on outbound requests.
	UserAgent string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		BaseDelay:      1 * time.Second,
		RequestTimeout: 10 * time.Second,
		UserAgent:      "SweatstackBridge/1.0",
	}
}
