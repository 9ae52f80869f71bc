package transform

import "github.com/sweatstack/bridge/payload"

// Transaction maps a Pike13 transaction record onto the CRM payment
// schema. The contact reference is resolved through two levels of
// optional nesting: transaction → invoice → person.
func Transaction(src payload.Map) payload.Map {
	invoice := src.Child("invoice")
	person := invoice.Child("person")

	return payload.Map{
		"email":       person.Value("email"),
		"amount":      dollars(src, "amount_cents"),
		"paymentType": src.Value("payment_type"),
		"status":      src.Value("state"),
		"customFields": payload.Map{
			FieldPrefix + "transaction_id":          payload.Stringify(src.Value("id")),
			FieldPrefix + "invoice_id":              payload.Stringify(invoice.Value("id")),
			FieldPrefix + "payment_type":            src.Value("payment_type"),
			FieldPrefix + "settled":                 src.Value("settled"),
			FieldPrefix + "external_transaction_id": src.Value("external_transaction_id"),
		},
	}
}
