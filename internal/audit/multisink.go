package audit

// MultiSink fans a single event out to every configured sink. Each sink
// still serializes its own writes; MultiSink does not weaken any
// individual sink's total order, it simply calls each in the same fixed
// sequence for every event.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink returns a Sink that forwards to each of sinks in order.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) OrderAdded(e OrderAdded) {
	for _, s := range m.sinks {
		s.OrderAdded(e)
	}
}

func (m *MultiSink) OrderExecuted(e OrderExecuted) {
	for _, s := range m.sinks {
		s.OrderExecuted(e)
	}
}

func (m *MultiSink) OrderDeleted(e OrderDeleted) {
	for _, s := range m.sinks {
		s.OrderDeleted(e)
	}
}
