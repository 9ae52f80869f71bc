package bridge

import "errors"

// Sentinel errors returned by Bridge construction.
var (
	// ErrNoRegistry is returned when a Bridge is created without an
	// endpoint registry.
	ErrNoRegistry = errors.New("bridge: endpoint registry is required")
)
