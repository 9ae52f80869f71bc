// Package observability provides tracing and metrics for the bridge.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/sweatstack/bridge"

// Tracer provides OpenTelemetry tracing for outbound deliveries.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a bridge tracer backed by the global provider.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartDeliverySpan starts a span covering one delivery, retries
// included.
func (t *Tracer) StartDeliverySpan(ctx context.Context, deliveryID, topic, targetURL string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "bridge.delivery",
		trace.WithAttributes(
			attribute.String("bridge.delivery_id", deliveryID),
			attribute.String("bridge.topic", topic),
			attribute.String("url.full", targetURL),
		),
	)
}

// EndDeliverySpan ends a delivery span with result attributes.
func (t *Tracer) EndDeliverySpan(span trace.Span, statusCode, attempts int, errMsg string) {
	span.SetAttributes(
		attribute.Int("http.response.status_code", statusCode),
		attribute.Int("bridge.attempts", attempts),
	)
	if errMsg != "" {
		span.SetAttributes(attribute.String("bridge.error", errMsg))
	}
	span.End()
}
