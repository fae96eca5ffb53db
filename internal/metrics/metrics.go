// Package metrics registers the Prometheus collectors exposed by the
// admin API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the matching engine updates. A single
// instance is created at startup and shared by the router's event
// listener and the admin API's /metrics handler.
type Metrics struct {
	OrdersAdded    prometheus.Counter
	OrdersExecuted prometheus.Counter
	OrdersDeleted  *prometheus.CounterVec
	BookDepth      *prometheus.GaugeVec
	MatchLatency   prometheus.Histogram
}

// New registers and returns a fresh Metrics bundle on registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_orders_added_total",
			Help: "Total number of orders that came to rest on a book.",
		}),
		OrdersExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_orders_executed_total",
			Help: "Total number of partial or full fills emitted.",
		}),
		OrdersDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcore_orders_deleted_total",
			Help: "Total number of cancel outcomes, labeled by acceptance.",
		}, []string{"accepted"}),
		BookDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchcore_book_depth",
			Help: "Resting order count per instrument and side.",
		}, []string{"instrument", "side"}),
		MatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchcore_match_latency_seconds",
			Help:    "Wall-clock time spent inside InstrumentOrders.Match.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(m.OrdersAdded, m.OrdersExecuted, m.OrdersDeleted, m.BookDepth, m.MatchLatency)
	return m
}

// ObserveMatchLatency is a small helper for `defer m.ObserveMatchLatency(time.Now())`.
func (m *Metrics) ObserveMatchLatency(start time.Time) {
	m.MatchLatency.Observe(time.Since(start).Seconds())
}
