// Package audit defines the serializing event sink: the three
// externalized event kinds and the Sink interface the matching core emits
// them through. Concrete sinks (local log, NATS fan-out, multi-sink
// combinator) live alongside this file; internal/audit/store holds the
// optional historical read-model.
package audit

// OrderAdded reports an order resting on its book.
type OrderAdded struct {
	ID         uint32
	Instrument string
	Price      uint32
	Count      uint32
	IsSell     bool
	Timestamp  int64
}

// OrderExecuted reports one partial or full fill.
type OrderExecuted struct {
	RestingID   uint32
	IncomingID  uint32
	ExecutionID uint32
	Price       uint32
	Qty         uint32
	Timestamp   int64
}

// OrderDeleted reports a cancel outcome, accepted or rejected. The
// accepted flag is always present so downstream tooling can distinguish
// the two without a separate event kind.
type OrderDeleted struct {
	ID        uint32
	Accepted  bool
	Timestamp int64
}

// Sink is the process-wide serializing emitter. Implementations must
// serialize their own writes so the combined stream they produce is a
// total order; the matching core takes no ordering responsibility of its
// own beyond calling these methods in the order the match loop reaches
// them.
type Sink interface {
	OrderAdded(OrderAdded)
	OrderExecuted(OrderExecuted)
	OrderDeleted(OrderDeleted)
}
