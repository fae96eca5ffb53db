package metrics

import (
	"strconv"

	"github.com/tradsys/matchcore/internal/audit"
)

// Sink adapts a Metrics bundle to audit.Sink so it can sit in a
// matching.Router's MultiSink alongside the logging and NATS sinks,
// incrementing counters on the very same events the core emits rather
// than sampling or polling book state.
type Sink struct {
	m *Metrics
}

// NewSink wraps m as an audit.Sink.
func NewSink(m *Metrics) *Sink { return &Sink{m: m} }

func (s *Sink) OrderAdded(audit.OrderAdded) { s.m.OrdersAdded.Inc() }

func (s *Sink) OrderExecuted(audit.OrderExecuted) { s.m.OrdersExecuted.Inc() }

func (s *Sink) OrderDeleted(e audit.OrderDeleted) {
	s.m.OrdersDeleted.WithLabelValues(strconv.FormatBool(e.Accepted)).Inc()
}
