// Package bridge forwards Pike13 webhook events to a CRM.
//
// Bridge is the event routing and delivery pipeline: it verifies the
// HMAC-SHA256 signature of an inbound Pike13 webhook, resolves the
// event's topic to a transformer and a destination URL, maps the payload
// onto the CRM schema, and POSTs the result with bounded
// exponential-backoff retries.
//
// The pipeline is stateless. Each request is processed independently to
// one of four terminal outcomes — Delivered, NoOp, Rejected, or Errored —
// and nothing is persisted between requests. The only shared state is
// the read-only endpoint registry built at startup.
//
// Quick start:
//
//	reg, err := endpoint.NewRegistry(map[string]string{
//	    "personCreated": "https://crm.example.com/hooks/person-created",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b, err := bridge.New(
//	    bridge.WithRegistry(reg),
//	    bridge.WithSecret(os.Getenv("PIKE13_WEBHOOK_SECRET")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := b.Process(ctx, bridge.Request{Body: body, Signature: sig})
package bridge
