package bridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sweatstack/bridge"
	"github.com/sweatstack/bridge/delivery"
	"github.com/sweatstack/bridge/endpoint"
	"github.com/sweatstack/bridge/signature"
)

// captureServer records every body POSTed to it and answers 200.
type captureServer struct {
	*httptest.Server
	mu     sync.Mutex
	bodies [][]byte
}

func newCaptureServer(t *testing.T) *captureServer {
	t.Helper()
	cs := &captureServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cs.mu.Lock()
		cs.bodies = append(cs.bodies, body)
		cs.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *captureServer) calls() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.bodies)
}

func (cs *captureServer) lastRecord(t *testing.T) map[string]any {
	t.Helper()
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.bodies) == 0 {
		t.Fatal("no outbound calls captured")
	}
	var record map[string]any
	if err := json.Unmarshal(cs.bodies[len(cs.bodies)-1], &record); err != nil {
		t.Fatalf("decode forwarded record: %v", err)
	}
	return record
}

func newBridge(t *testing.T, urls map[string]string, opts ...bridge.Option) *bridge.Bridge {
	t.Helper()
	reg, err := endpoint.NewRegistry(urls)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	opts = append([]bridge.Option{
		bridge.WithRegistry(reg),
		bridge.WithBaseDelay(time.Millisecond),
	}, opts...)
	b, err := bridge.New(opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return b
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := bridge.New()
	if !errors.Is(err, bridge.ErrNoRegistry) {
		t.Errorf("New() error = %v, want ErrNoRegistry", err)
	}
}

func TestProcessPersonCreated(t *testing.T) {
	crm := newCaptureServer(t)
	b := newBridge(t, map[string]string{"personCreated": crm.URL})

	body := []byte(`{
		"topic": "person.created",
		"webhook_id": "wh_1",
		"business_id": "biz_9",
		"data": {"people": [{"id": 42, "first_name": "Ann", "last_name": "Lee", "email": "a@x.com"}]}
	}`)

	res := b.Process(context.Background(), bridge.Request{Body: body})

	if res.Status != bridge.StatusDelivered {
		t.Fatalf("Status = %v (%s), want delivered", res.Status, res.Message)
	}
	if res.Topic != "person.created" {
		t.Errorf("Topic = %q", res.Topic)
	}
	if res.Status.HTTPStatus() != http.StatusOK {
		t.Errorf("HTTPStatus = %d, want 200", res.Status.HTTPStatus())
	}

	record := crm.lastRecord(t)
	if record["type"] != "person_created" {
		t.Errorf("type = %v, want person_created", record["type"])
	}
	if record["firstName"] != "Ann" {
		t.Errorf("firstName = %v, want Ann", record["firstName"])
	}

	cf, _ := record["customFields"].(map[string]any)
	if cf["pike13_id"] != "42" {
		t.Errorf("customFields.pike13_id = %v, want %q", cf["pike13_id"], "42")
	}

	meta, _ := record["metadata"].(map[string]any)
	if meta == nil {
		t.Fatal("metadata block missing")
	}
	if meta["sourceTopic"] != "person.created" {
		t.Errorf("metadata.sourceTopic = %v", meta["sourceTopic"])
	}
	if meta["sourceWebhookId"] != "wh_1" {
		t.Errorf("metadata.sourceWebhookId = %v", meta["sourceWebhookId"])
	}
	if meta["sourceBusinessId"] != "biz_9" {
		t.Errorf("metadata.sourceBusinessId = %v", meta["sourceBusinessId"])
	}
	if meta["bridgeVersion"] != bridge.Version {
		t.Errorf("metadata.bridgeVersion = %v, want %s", meta["bridgeVersion"], bridge.Version)
	}
	if _, err := time.Parse(time.RFC3339, meta["processedAt"].(string)); err != nil {
		t.Errorf("metadata.processedAt is not RFC3339: %v", err)
	}
}

func TestProcessSignature(t *testing.T) {
	crm := newCaptureServer(t)
	secret := "pike13secret"
	b := newBridge(t, map[string]string{"personCreated": crm.URL}, bridge.WithSecret(secret))

	body := []byte(`{"topic": "person.created", "data": {"people": [{"id": 1}]}}`)

	// Valid signature passes.
	res := b.Process(context.Background(), bridge.Request{
		Body:      body,
		Signature: signature.Sign(secret, body),
	})
	if res.Status != bridge.StatusDelivered {
		t.Fatalf("Status = %v (%s), want delivered", res.Status, res.Message)
	}

	// Wrong signature is rejected without an outbound call.
	before := crm.calls()
	res = b.Process(context.Background(), bridge.Request{
		Body:      body,
		Signature: signature.Sign("wrong", body),
	})
	if res.Status != bridge.StatusRejected {
		t.Fatalf("Status = %v, want rejected", res.Status)
	}
	if res.Status.HTTPStatus() != http.StatusUnauthorized {
		t.Errorf("HTTPStatus = %d, want 401", res.Status.HTTPStatus())
	}
	if crm.calls() != before {
		t.Error("rejected event must not be forwarded")
	}

	// Tampered body is rejected.
	sig := signature.Sign(secret, body)
	tampered := append([]byte{}, body...)
	tampered[len(tampered)-2] = ' '
	res = b.Process(context.Background(), bridge.Request{Body: tampered, Signature: sig})
	if res.Status != bridge.StatusRejected {
		t.Errorf("Status = %v for tampered body, want rejected", res.Status)
	}
}

func TestProcessUnknownTopic(t *testing.T) {
	crm := newCaptureServer(t)
	b := newBridge(t, map[string]string{"personCreated": crm.URL})

	res := b.Process(context.Background(), bridge.Request{
		Body: []byte(`{"topic": "staffmember.created", "data": {}}`),
	})

	if res.Status != bridge.StatusNoOp {
		t.Fatalf("Status = %v, want noop", res.Status)
	}
	if res.Status.HTTPStatus() != http.StatusOK {
		t.Errorf("HTTPStatus = %d, want 200", res.Status.HTTPStatus())
	}
	if res.Message != `topic "staffmember.created" not configured for routing` {
		t.Errorf("Message = %q", res.Message)
	}
	if crm.calls() != 0 {
		t.Error("unknown topic must not be forwarded")
	}
}

func TestProcessEmptyDataList(t *testing.T) {
	crm := newCaptureServer(t)
	b := newBridge(t, map[string]string{"personCreated": crm.URL})

	res := b.Process(context.Background(), bridge.Request{
		Body: []byte(`{"topic": "person.created", "data": {"people": []}}`),
	})

	if res.Status != bridge.StatusNoOp {
		t.Fatalf("Status = %v, want noop", res.Status)
	}
	if res.Message != "no data to process" {
		t.Errorf("Message = %q", res.Message)
	}
	if crm.calls() != 0 {
		t.Error("empty event must not be forwarded")
	}
}

func TestProcessNoEndpointConfigured(t *testing.T) {
	b := newBridge(t, map[string]string{})

	res := b.Process(context.Background(), bridge.Request{
		Body: []byte(`{"topic": "person.created", "data": {"people": [{"id": 1}]}}`),
	})

	if res.Status != bridge.StatusNoOp {
		t.Fatalf("Status = %v, want noop", res.Status)
	}
	if res.Message != "no target webhook configured" {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestProcessPreviousData(t *testing.T) {
	crm := newCaptureServer(t)
	b := newBridge(t, map[string]string{
		"personUpdated": crm.URL,
		"personCreated": crm.URL,
	})

	res := b.Process(context.Background(), bridge.Request{
		Body: []byte(`{
			"topic": "person.updated",
			"data": {
				"people": [{"id": 1, "first_name": "New"}],
				"previous": {"first_name": "Old", "nested": {"n": 1}}
			}
		}`),
	})
	if res.Status != bridge.StatusDelivered {
		t.Fatalf("Status = %v (%s), want delivered", res.Status, res.Message)
	}

	record := crm.lastRecord(t)
	if record["type"] != "person_updated" {
		t.Errorf("type = %v, want person_updated", record["type"])
	}
	prev, _ := record["previousData"].(map[string]any)
	if prev == nil {
		t.Fatal("previousData missing")
	}
	if prev["first_name"] != "Old" {
		t.Errorf("previousData.first_name = %v, want Old", prev["first_name"])
	}

	// Created topics never carry previousData.
	res = b.Process(context.Background(), bridge.Request{
		Body: []byte(`{"topic": "person.created", "data": {"people": [{"id": 2}]}}`),
	})
	if res.Status != bridge.StatusDelivered {
		t.Fatalf("Status = %v (%s), want delivered", res.Status, res.Message)
	}
	if _, ok := crm.lastRecord(t)["previousData"]; ok {
		t.Error("created topic should not carry previousData")
	}
}

func TestProcessDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := newBridge(t, map[string]string{"personCreated": srv.URL})

	res := b.Process(context.Background(), bridge.Request{
		Body: []byte(`{"topic": "person.created", "data": {"people": [{"id": 1}]}}`),
	})

	if res.Status != bridge.StatusErrored {
		t.Fatalf("Status = %v, want errored", res.Status)
	}
	if res.Status.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want 500", res.Status.HTTPStatus())
	}

	var derr *delivery.Error
	if !errors.As(res.Err, &derr) {
		t.Fatalf("Err type = %T, want *delivery.Error", res.Err)
	}
	if derr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", derr.Attempts)
	}
}

func TestProcessMalformedBody(t *testing.T) {
	b := newBridge(t, map[string]string{})

	res := b.Process(context.Background(), bridge.Request{Body: []byte(`{broken`)})
	if res.Status != bridge.StatusErrored {
		t.Errorf("Status = %v, want errored", res.Status)
	}
}

func TestTopicsAndFamilies(t *testing.T) {
	topics := bridge.Topics()
	if len(topics) != 10 {
		t.Errorf("Topics() returned %d entries, want 10", len(topics))
	}
	families := bridge.Families()
	if len(families) != 10 {
		t.Errorf("Families() returned %d entries, want 10", len(families))
	}

	found := map[string]bool{}
	for _, f := range families {
		found[f] = true
	}
	for _, want := range []string{"personCreated", "visitUpdated", "invoiceCreated", "transactionUpdated", "membershipCreated"} {
		if !found[want] {
			t.Errorf("Families() missing %q", want)
		}
	}
}
