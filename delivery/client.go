package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/sweatstack/bridge/id"
)

const maxResponseBody = 1024 // 1KB cap on drained response bodies

// Client delivers transformed records to CRM webhook URLs.
type Client struct {
	http   *http.Client
	config Config
	logger *slog.Logger
}

// NewClient creates a delivery client. Zero config fields fall back to
// DefaultConfig values.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	defaults := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		logger: logger,
	}
}

// Deliver POSTs record as JSON to targetURL, retrying failed attempts
// sequentially with exponential backoff (BaseDelay * 2^(attempt-1)).
// On success it returns the outcome of the winning attempt; once the
// budget is exhausted it returns a *Error wrapping the last cause.
// Backoff waits respect ctx cancellation.
func (c *Client) Deliver(ctx context.Context, targetURL, topic string, record map[string]any) (*Outcome, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("delivery: marshal record: %w", err)
	}

	deliveryID := id.NewDeliveryID()

	var span trace.Span
	if c.config.Tracer != nil {
		ctx, span = c.config.Tracer.StartDeliverySpan(ctx, deliveryID.String(), topic, targetURL)
	}

	var lastErr error
	var lastStatus int
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		start := time.Now()
		status, attemptErr := c.attempt(ctx, targetURL, body, deliveryID, attempt)
		latency := time.Since(start).Seconds()

		if attemptErr == nil {
			if c.config.Metrics != nil {
				c.config.Metrics.RecordDelivery("delivered", latency)
			}
			if span != nil {
				c.config.Tracer.EndDeliverySpan(span, status, attempt, "")
			}
			c.logger.DebugContext(ctx, "delivered",
				"delivery_id", deliveryID, "topic", topic, "status", status, "attempt", attempt)
			return &Outcome{StatusCode: status, Attempts: attempt}, nil
		}

		lastErr, lastStatus = attemptErr, status
		c.logger.DebugContext(ctx, "delivery attempt failed",
			"delivery_id", deliveryID, "topic", topic, "attempt", attempt,
			"status", status, "error", attemptErr)

		if attempt == c.config.MaxAttempts {
			break
		}
		if c.config.Metrics != nil {
			c.config.Metrics.RecordDelivery("retried", latency)
		}

		delay := c.config.BaseDelay << (attempt - 1)
		select {
		case <-ctx.Done():
			if span != nil {
				c.config.Tracer.EndDeliverySpan(span, lastStatus, attempt, ctx.Err().Error())
			}
			return nil, &Error{Attempts: attempt, LastStatus: lastStatus, Cause: ctx.Err()}
		case <-time.After(delay):
		}
	}

	if c.config.Metrics != nil {
		c.config.Metrics.RecordDelivery("failed", 0)
	}
	if span != nil {
		c.config.Tracer.EndDeliverySpan(span, lastStatus, c.config.MaxAttempts, lastErr.Error())
	}
	return nil, &Error{Attempts: c.config.MaxAttempts, LastStatus: lastStatus, Cause: lastErr}
}

// attempt performs one HTTP POST. A non-2xx response is an error; its
// status code is still returned for bookkeeping.
func (c *Client) attempt(ctx context.Context, targetURL string, body []byte, deliveryID id.ID, attempt int) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Bridge-Delivery-ID", deliveryID.String())
	req.Header.Set("X-Bridge-Attempt", strconv.Itoa(attempt))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain a bounded amount so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
