package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the bridge.
type Metrics struct {
	EventsReceivedTotal prometheus.Counter
	OutcomesTotal       *prometheus.CounterVec
	DeliveriesTotal     *prometheus.CounterVec
	DeliveryLatency     prometheus.Histogram
}

// NewMetrics creates and registers the bridge instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsReceivedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bridge_events_received_total",
			Help: "Inbound webhook events received.",
		}),
		OutcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_outcomes_total",
			Help: "Terminal pipeline outcomes by status.",
		}, []string{"status"}),
		DeliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_deliveries_total",
			Help: "Outbound delivery attempts by result.",
		}, []string{"status"}),
		DeliveryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bridge_delivery_latency_seconds",
			Help:    "Latency of individual outbound delivery attempts.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordDelivery records one delivery attempt with its result and latency.
func (m *Metrics) RecordDelivery(status string, latencySeconds float64) {
	m.DeliveriesTotal.WithLabelValues(status).Inc()
	m.DeliveryLatency.Observe(latencySeconds)
}

// RecordOutcome records a terminal pipeline outcome.
func (m *Metrics) RecordOutcome(status string) {
	m.OutcomesTotal.WithLabelValues(status).Inc()
}
