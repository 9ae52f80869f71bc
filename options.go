package bridge

import (
	"log/slog"
	"time"

	"github.com/sweatstack/bridge/endpoint"
	"github.com/sweatstack/bridge/observability"
)

// Option configures a Bridge instance.
type Option func(*Bridge) error

// WithRegistry sets the topic-family → destination URL registry.
func WithRegistry(reg *endpoint.Registry) Option {
	return func(b *Bridge) error {
		b.registry = reg
		return nil
	}
}

// WithSecret sets the shared Pike13 signing secret. An empty secret
// disables signature verification.
func WithSecret(secret string) Option {
	return func(b *Bridge) error {
		b.config.Secret = secret
		return nil
	}
}

// WithLogger sets the structured logger for the Bridge instance.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) error {
		b.logger = logger
		return nil
	}
}

// WithMaxAttempts sets the delivery retry budget per event.
func WithMaxAttempts(n int) Option {
	return func(b *Bridge) error {
		b.config.MaxAttempts = n
		return nil
	}
}

// WithBaseDelay sets the backoff base delay between delivery attempts.
func WithBaseDelay(d time.Duration) Option {
	return func(b *Bridge) error {
		b.config.BaseDelay = d
		return nil
	}
}

// WithRequestTimeout sets the HTTP timeout per delivery attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(b *Bridge) error {
		b.config.RequestTimeout = d
		return nil
	}
}

// WithMetrics sets the metrics instruments for the Bridge instance.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bridge) error {
		b.metrics = m
		return nil
	}
}

// WithTracer sets the delivery tracer for the Bridge instance.
func WithTracer(t *observability.Tracer) Option {
	return func(b *Bridge) error {
		b.tracer = t
		return nil
	}
}
