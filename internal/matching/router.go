package matching

import (
	"sync"
	"time"

	"github.com/tradsys/matchcore/internal/audit"
)

// Router maps instrument symbol to its InstrumentOrders and fans incoming
// commands out to the right one. Once created, an instrument's
// record is never removed, so a reference obtained via resolve remains
// stable for the process lifetime and callers never need to re-resolve
// between a lookup and a subsequent operation on the same symbol.
type Router struct {
	mu      sync.Mutex
	symbols map[string]*InstrumentOrders
	live    *livenessMap
	sink    audit.Sink
	clock   Clock
}

// NewRouter builds a router that publishes every event to sink and
// timestamps with clock. A nil clock defaults to wall-clock nanoseconds
// relative to process start. The router owns the single process-wide
// liveness map and hands the same instance to every instrument it
// creates.
func NewRouter(sink audit.Sink, clock Clock) *Router {
	if clock == nil {
		start := time.Now()
		clock = func() int64 { return time.Since(start).Nanoseconds() }
	}
	return &Router{
		symbols: make(map[string]*InstrumentOrders),
		live:    newLivenessMap(),
		sink:    sink,
		clock:   clock,
	}
}

// resolve returns the existing InstrumentOrders for symbol, or creates and
// registers a fresh empty pair under the router's write lock.
func (r *Router) resolve(symbol string) *InstrumentOrders {
	r.mu.Lock()
	defer r.mu.Unlock()
	io, ok := r.symbols[symbol]
	if !ok {
		io = newInstrumentOrders(symbol, r.live, r.sink, r.clock)
		r.symbols[symbol] = io
	}
	return io
}

// Dispatch routes a single ClientCommand: buy/sell are resolved to their
// instrument's book pair and handed to Match; cancel goes straight to the
// process-wide liveness map without resolving — or even consulting — any
// per-instrument state, since a cancel carries no reliable instrument
// routing of its own.
func (r *Router) Dispatch(cmd ClientCommand) {
	switch cmd.Kind {
	case Buy, Sell:
		r.resolve(cmd.Instrument).Match(cmd)
	case Cancel:
		r.cancel(cmd.OrderID)
	}
}

// cancel decides accept/reject using the liveness map lock alone; the
// resting heap is untouched, reaped lazily by a later PeekTopLive.
func (r *Router) cancel(orderID uint32) {
	accepted := r.live.cancel(orderID)
	r.sink.OrderDeleted(audit.OrderDeleted{
		ID:        orderID,
		Accepted:  accepted,
		Timestamp: r.clock(),
	})
}

// Snapshot returns a point-in-time Snapshot per known instrument, for the
// admin API and Prometheus gauges.
func (r *Router) Snapshot() []Snapshot {
	r.mu.Lock()
	instruments := make([]*InstrumentOrders, 0, len(r.symbols))
	for _, io := range r.symbols {
		instruments = append(instruments, io)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(instruments))
	for _, io := range instruments {
		out = append(out, io.Snapshot())
	}
	return out
}
