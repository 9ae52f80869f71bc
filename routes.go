package bridge

import (
	"sort"

	"github.com/sweatstack/bridge/transform"
)

// route describes how one Pike13 topic is processed: which list inside
// the data block carries the records, which transformer applies, the
// event-kind tag stamped on the output, and the endpoint family the
// destination URL is resolved from.
type route struct {
	family    string
	listKey   string
	kind      string
	updated   bool
	transform transform.Func
}

// routes is the fixed table of supported Pike13 topics. Topics outside
// this table are acknowledged as no-ops.
var routes = map[string]route{
	"person.created":      {family: "personCreated", listKey: "people", kind: "person_created", transform: transform.Person},
	"person.updated":      {family: "personUpdated", listKey: "people", kind: "person_updated", updated: true, transform: transform.Person},
	"visit.created":       {family: "visitCreated", listKey: "visits", kind: "visit_created", transform: transform.Visit},
	"visit.updated":       {family: "visitUpdated", listKey: "visits", kind: "visit_updated", updated: true, transform: transform.Visit},
	"invoice.created":     {family: "invoiceCreated", listKey: "invoices", kind: "invoice_created", transform: transform.Invoice},
	"invoice.updated":     {family: "invoiceUpdated", listKey: "invoices", kind: "invoice_updated", updated: true, transform: transform.Invoice},
	"transaction.created": {family: "transactionCreated", listKey: "transactions", kind: "transaction_created", transform: transform.Transaction},
	"transaction.updated": {family: "transactionUpdated", listKey: "transactions", kind: "transaction_updated", updated: true, transform: transform.Transaction},
	"membership.created":  {family: "membershipCreated", listKey: "memberships", kind: "membership_created", transform: transform.Membership},
	"membership.updated":  {family: "membershipUpdated", listKey: "memberships", kind: "membership_updated", updated: true, transform: transform.Membership},
}

// Topics returns the supported Pike13 topics in sorted order.
func Topics() []string {
	topics := make([]string, 0, len(routes))
	for t := range routes {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Families returns the endpoint family names the registry can be
// configured with, in sorted order.
func Families() []string {
	families := make([]string, 0, len(routes))
	for _, rt := range routes {
		families = append(families, rt.family)
	}
	sort.Strings(families)
	return families
}
