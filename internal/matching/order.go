// Package matching implements the per-instrument price-time-priority
// matching core: the order book pair, the match loop, the liveness map,
// and the router that fans connections out across instruments.
package matching

import "fmt"

// Kind identifies which side of the book an order or command belongs to.
type Kind int

const (
	// Buy is a bid.
	Buy Kind = iota
	// Sell is an ask.
	Sell
	// Cancel is not a resting side; it targets an existing order_id.
	Cancel
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ClientCommand is the decoded form of a single framed input record.
type ClientCommand struct {
	Kind       Kind
	OrderID    uint32
	Instrument string
	Price      uint32
	Count      uint32
}

// Order is a resting or active order. Orders are treated as immutable by
// convention: a partial fill produces a mutated copy that is pushed back
// onto the heap under lock rather than edited in place while other
// goroutines might observe it (see OrderBook.replaceTopIfLiveLocked).
type Order struct {
	Kind        Kind
	OrderID     uint32
	Price       uint32
	Count       uint32
	Instrument  string
	ExecutionID uint32
	Timestamp   int64 // monotonic nanoseconds since the engine's epoch

	// index is maintained by container/heap; it is not part of the
	// priority key and does not affect Less.
	index int
}

// newOrder builds a fresh resting Order from an incoming command at the
// moment it is about to rest, stamping it with the current monotonic time.
func newOrder(cmd ClientCommand, ts int64) *Order {
	return &Order{
		Kind:       cmd.Kind,
		OrderID:    cmd.OrderID,
		Price:      cmd.Price,
		Count:      cmd.Count,
		Instrument: cmd.Instrument,
		Timestamp:  ts,
	}
}

// crosses reports whether resting order o (the receiver) crosses an
// incoming command of the opposite kind: a resting buy crosses when its
// price is at or above the incoming price; a resting sell crosses when
// its price is at or below it.
func (o *Order) crosses(cmd ClientCommand) bool {
	switch o.Kind {
	case Buy:
		return o.Price >= cmd.Price
	case Sell:
		return o.Price <= cmd.Price
	default:
		return false
	}
}

// less implements the strict price-time comparator: a buy book's top is
// the highest price, a sell book's top is the lowest price; ties broken
// by earliest timestamp.
func less(a, b *Order) bool {
	if a.Kind == Buy {
		if a.Price != b.Price {
			return a.Price > b.Price
		}
		return a.Timestamp < b.Timestamp
	}
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Timestamp < b.Timestamp
}
