package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sweatstack/bridge/delivery"
	"github.com/sweatstack/bridge/endpoint"
	"github.com/sweatstack/bridge/event"
	"github.com/sweatstack/bridge/id"
	"github.com/sweatstack/bridge/observability"
	"github.com/sweatstack/bridge/payload"
	"github.com/sweatstack/bridge/signature"
)

// Bridge is the Pike13 → CRM event pipeline.
type Bridge struct {
	config   Config
	registry *endpoint.Registry
	client   *delivery.Client
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   *observability.Tracer
}

// New creates a Bridge with the given options. A registry is required.
func New(opts ...Option) (*Bridge, error) {
	b := &Bridge{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.registry == nil {
		return nil, ErrNoRegistry
	}
	b.client = delivery.NewClient(delivery.Config{
		MaxAttempts: b.config.MaxAttempts,
		BaseDelay:   b.config.BaseDelay,
		Timeout:     b.config.RequestTimeout,
		UserAgent:   b.config.UserAgent,
		Metrics:     b.metrics,
		Tracer:      b.tracer,
	}, b.logger)
	return b, nil
}

// Process runs one inbound request through the pipeline to a terminal
// outcome. Every failure is folded into the Result; Process never
// panics past this boundary and never returns an error.
//
// The pipeline in order:
//  1. Verify the HMAC signature over the raw body.
//  2. Parse the event and resolve its topic in the route table.
//  3. Extract the first record of the topic's data list.
//  4. Transform, tag with the event kind, and attach previousData for
//     "updated" topics.
//  5. Resolve the destination URL for the topic family.
//  6. Attach the source metadata block.
//  7. Deliver with bounded retries.
func (b *Bridge) Process(ctx context.Context, req Request) *Result {
	if b.metrics != nil {
		b.metrics.EventsReceivedTotal.Inc()
	}

	if !signature.Verify(b.config.Secret, req.Body, req.Signature) {
		b.logger.WarnContext(ctx, "webhook signature rejected")
		return b.finish(&Result{
			Status:  StatusRejected,
			Message: "invalid webhook signature",
		})
	}

	evt, err := event.Parse(req.Body)
	if err != nil {
		b.logger.ErrorContext(ctx, "unparseable webhook body", "error", err)
		return b.finish(&Result{
			Status:  StatusErrored,
			Message: fmt.Sprintf("invalid event payload: %v", err),
			Err:     err,
		})
	}

	eventID := id.NewEventID()

	rt, ok := routes[evt.Topic]
	if !ok {
		b.logger.DebugContext(ctx, "topic not routed",
			"event_id", eventID, "topic", evt.Topic)
		return b.finish(&Result{
			Status:  StatusNoOp,
			Topic:   evt.Topic,
			Message: fmt.Sprintf("topic %q not configured for routing", evt.Topic),
		})
	}

	src, ok := evt.First(rt.listKey)
	if !ok {
		b.logger.DebugContext(ctx, "event carries no data",
			"event_id", eventID, "topic", evt.Topic, "list", rt.listKey)
		return b.finish(&Result{
			Status:  StatusNoOp,
			Topic:   evt.Topic,
			Message: "no data to process",
		})
	}

	record := rt.transform(src)
	if record == nil {
		return b.finish(&Result{
			Status:  StatusNoOp,
			Topic:   evt.Topic,
			Message: "no data to process",
		})
	}
	record["type"] = rt.kind
	if rt.updated {
		if prev, ok := evt.Previous(); ok {
			record["previousData"] = prev
		}
	}

	targetURL, ok := b.registry.Resolve(rt.family)
	if !ok {
		b.logger.DebugContext(ctx, "no destination for family",
			"event_id", eventID, "topic", evt.Topic, "family", rt.family)
		return b.finish(&Result{
			Status:  StatusNoOp,
			Topic:   evt.Topic,
			Message: "no target webhook configured",
		})
	}

	record["metadata"] = payload.Map{
		"sourceTopic":      evt.Topic,
		"sourceWebhookId":  evt.WebhookID,
		"sourceBusinessId": evt.BusinessID,
		"processedAt":      time.Now().UTC().Format(time.RFC3339),
		"bridgeVersion":    Version,
	}

	outcome, err := b.client.Deliver(ctx, targetURL, evt.Topic, record)
	if err != nil {
		b.logger.ErrorContext(ctx, "delivery failed",
			"event_id", eventID, "topic", evt.Topic, "error", err)
		return b.finish(&Result{
			Status:  StatusErrored,
			Topic:   evt.Topic,
			Message: fmt.Sprintf("delivery failed: %v", err),
			Err:     err,
		})
	}

	b.logger.InfoContext(ctx, "event forwarded",
		"event_id", eventID, "topic", evt.Topic,
		"status", outcome.StatusCode, "attempts", outcome.Attempts)
	return b.finish(&Result{
		Status:   StatusDelivered,
		Topic:    evt.Topic,
		Message:  "event processed and forwarded",
		Attempts: outcome.Attempts,
	})
}

func (b *Bridge) finish(res *Result) *Result {
	if b.metrics != nil {
		b.metrics.RecordOutcome(res.Status.String())
	}
	return res
}
