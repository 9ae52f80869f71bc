package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sweatstack/bridge"
	"github.com/sweatstack/bridge/api"
	"github.com/sweatstack/bridge/endpoint"
	"github.com/sweatstack/bridge/ratelimit"
	"github.com/sweatstack/bridge/signature"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandler(t *testing.T, urls map[string]string, opts ...bridge.Option) *api.Handler {
	t.Helper()
	reg, err := endpoint.NewRegistry(urls)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	opts = append([]bridge.Option{
		bridge.WithRegistry(reg),
		bridge.WithLogger(discardLogger()),
		bridge.WithBaseDelay(time.Millisecond),
	}, opts...)
	b, err := bridge.New(opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return api.NewHandler(b, discardLogger())
}

func post(h http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/pike13", strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestWebhookDelivered(t *testing.T) {
	var calls atomic.Int32
	crm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer crm.Close()

	h := newHandler(t, map[string]string{"personCreated": crm.URL})

	rec := post(h, `{"topic": "person.created", "data": {"people": [{"id": 42, "first_name": "Ann"}]}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	out := decode(t, rec)
	if out["topic"] != "person.created" {
		t.Errorf("topic = %v", out["topic"])
	}
	if out["message"] != "event processed and forwarded" {
		t.Errorf("message = %v", out["message"])
	}
	if calls.Load() != 1 {
		t.Errorf("CRM saw %d calls, want 1", calls.Load())
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	h := newHandler(t, map[string]string{}, bridge.WithSecret("s3cret"))

	rec := post(h, `{"topic": "person.created", "data": {}}`, map[string]string{
		api.SignatureHeader: "deadbeef",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	out := decode(t, rec)
	if out["error"] != "invalid webhook signature" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestWebhookValidSignature(t *testing.T) {
	h := newHandler(t, map[string]string{}, bridge.WithSecret("s3cret"))

	body := `{"topic": "something.else", "data": {}}`
	rec := post(h, body, map[string]string{
		api.SignatureHeader: signature.Sign("s3cret", []byte(body)),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestWebhookUnknownTopic(t *testing.T) {
	h := newHandler(t, map[string]string{})

	rec := post(h, `{"topic": "staffmember.created", "data": {}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	out := decode(t, rec)
	msg, _ := out["message"].(string)
	if !strings.Contains(msg, "not configured for routing") {
		t.Errorf("message = %q", msg)
	}
}

func TestWebhookNoData(t *testing.T) {
	h := newHandler(t, map[string]string{})

	rec := post(h, `{"topic": "visit.created", "data": {"visits": []}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	out := decode(t, rec)
	if out["message"] != "no data to process" {
		t.Errorf("message = %v", out["message"])
	}
}

func TestWebhookDeliveryError(t *testing.T) {
	crm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer crm.Close()

	h := newHandler(t, map[string]string{"personCreated": crm.URL})

	rec := post(h, `{"topic": "person.created", "data": {"people": [{"id": 1}]}}`, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	out := decode(t, rec)
	errMsg, _ := out["error"].(string)
	if !strings.Contains(errMsg, "delivery failed") {
		t.Errorf("error = %q", errMsg)
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	h := newHandler(t, map[string]string{})

	req := httptest.NewRequest(http.MethodGet, "/webhook/pike13", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newHandler(t, map[string]string{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := newHandler(t, map[string]string{})
	limited := api.Chain(h, api.WithRateLimit(ratelimit.NewTokenBucket(1), discardLogger(), false))

	body := `{"topic": "x.y", "data": {}}`
	rec := post(limited, body, map[string]string{"X-Forwarded-For": "9.9.9.9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = post(limited, body, map[string]string{"X-Forwarded-For": "9.9.9.9"})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}

	// A different client is unaffected.
	rec = post(limited, body, map[string]string{"X-Forwarded-For": "8.8.8.8"})
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestBodyLimitMiddleware(t *testing.T) {
	h := newHandler(t, map[string]string{})
	limited := api.Chain(h, api.WithBodyLimit(16))

	big := `{"topic": "person.created", "data": {"pad": "` + strings.Repeat("x", 64) + `"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/pike13", bytes.NewReader([]byte(big)))
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Errorf("oversized body should not be accepted, got %d", rec.Code)
	}
}
