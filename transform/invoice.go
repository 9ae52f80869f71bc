package transform

import "github.com/sweatstack/bridge/payload"

// Invoice maps a Pike13 invoice record onto the CRM opportunity schema.
// Pike13 reports monetary amounts in integer cents; the CRM expects
// decimal major units.
func Invoice(src payload.Map) payload.Map {
	return payload.Map{
		"amount":        dollars(src, "total_cents"),
		"status":        src.Value("state"),
		"invoiceNumber": src.Value("invoice_number"),
		"invoiceDate":   src.Value("date"),
		"customFields": payload.Map{
			FieldPrefix + "invoice_id":     payload.Stringify(src.Value("id")),
			FieldPrefix + "due_amount":     dollars(src, "due_cents"),
			FieldPrefix + "discount_total": dollars(src, "discount_total_cents"),
		},
	}
}
