package matching

import "github.com/tradsys/matchcore/internal/audit"

// Clock returns monotonic nanoseconds since some fixed epoch of the
// process. Production wiring uses a process-start-relative
// time.Now().UnixNano(); tests supply a deterministic stub so exact
// tie-break order can be asserted.
type Clock func() int64

// InstrumentOrders is the book pair for a single symbol: it owns the
// match loop and the add-or-match decision.
type InstrumentOrders struct {
	symbol string
	buy    *OrderBook
	sell   *OrderBook
	live   *livenessMap
	sink   audit.Sink
	clock  Clock
}

// newInstrumentOrders builds a fresh book pair for symbol sharing the
// process-wide liveness map. Every instrument must share the same map
// instance — order_id is unique across the whole engine, not just within
// one symbol, and a cancel command carries no reliable instrument
// routing of its own.
func newInstrumentOrders(symbol string, live *livenessMap, sink audit.Sink, clock Clock) *InstrumentOrders {
	return &InstrumentOrders{
		symbol: symbol,
		buy:    newOrderBook(Buy, live),
		sell:   newOrderBook(Sell, live),
		live:   live,
		sink:   sink,
		clock:  clock,
	}
}

// books returns (own, opp) for the incoming command's kind.
func (io *InstrumentOrders) books(kind Kind) (own, opp *OrderBook) {
	if kind == Buy {
		return io.buy, io.sell
	}
	return io.sell, io.buy
}

// lockBoth always acquires the buy book before the sell book, regardless
// of which is "own" and which is "opp" for this call, so no two goroutines
// can ever form a lock-acquisition cycle between a single instrument's two
// queue locks.
func (io *InstrumentOrders) lockBoth() {
	io.buy.mu.Lock()
	io.sell.mu.Lock()
}

func (io *InstrumentOrders) unlockBoth() {
	io.sell.mu.Unlock()
	io.buy.mu.Unlock()
}

// Match runs until the incoming command is fully consumed or rests. It
// is the single entry point for processing a buy or sell ClientCommand
// against this instrument.
func (io *InstrumentOrders) Match(cmd ClientCommand) {
	own, opp := io.books(cmd.Kind)

	for cmd.Count > 0 {
		opp.mu.Lock()
		top := opp.peekTopLiveLocked()

		if top == nil || !top.crosses(cmd) {
			// Nothing to match against right now: release the opposing
			// queue lock and attempt to rest atomically with that
			// absence.
			opp.mu.Unlock()

			io.lockBoth()
			ok := tryAddResting(cmd, own, opp, io.clock())
			io.unlockBoth()

			if ok {
				io.sink.OrderAdded(audit.OrderAdded{
					ID:         cmd.OrderID,
					Instrument: io.symbol,
					Price:      cmd.Price,
					Count:      cmd.Count,
					IsSell:     cmd.Kind == Sell,
					Timestamp:  io.clock(),
				})
				return
			}
			// Someone rested a crossing order between our peek and our
			// attempt to rest; loop and re-peek.
			continue
		}

		// top crosses: decide full or partial consumption.
		if cmd.Count >= top.Count {
			popped, ok := opp.popTopIfLiveLocked()
			opp.mu.Unlock()
			if !ok {
				// Lost the race to a concurrent cancel; retry.
				continue
			}
			ts := io.clock()
			io.sink.OrderExecuted(audit.OrderExecuted{
				RestingID:   popped.OrderID,
				IncomingID:  cmd.OrderID,
				ExecutionID: popped.ExecutionID + 1,
				Price:       popped.Price,
				Qty:         popped.Count,
				Timestamp:   ts,
			})
			cmd.Count -= popped.Count
			continue
		}

		newTop := &Order{
			Kind:        top.Kind,
			OrderID:     top.OrderID,
			Price:       top.Price,
			Count:       top.Count - cmd.Count,
			Instrument:  top.Instrument,
			ExecutionID: top.ExecutionID + 1,
			Timestamp:   top.Timestamp,
		}
		popped, ok := opp.replaceTopIfLiveLocked(newTop)
		opp.mu.Unlock()
		if !ok {
			continue
		}
		ts := io.clock()
		io.sink.OrderExecuted(audit.OrderExecuted{
			RestingID:   popped.OrderID,
			IncomingID:  cmd.OrderID,
			ExecutionID: newTop.ExecutionID,
			Price:       popped.Price,
			Qty:         cmd.Count,
			Timestamp:   ts,
		})
		cmd.Count = 0
		return
	}
}

// Snapshot reports lightweight depth/best-price stats for the admin API
// and Prometheus gauges; it never participates in matching decisions.
type Snapshot struct {
	Symbol     string
	BuyDepth   int
	SellDepth  int
	BestBid    uint32
	BestAsk    uint32
	HasBestBid bool
	HasBestAsk bool
}

func (io *InstrumentOrders) Snapshot() Snapshot {
	s := Snapshot{Symbol: io.symbol}
	if top := io.buy.PeekTopLive(); top != nil {
		s.BestBid, s.HasBestBid = top.Price, true
	}
	if top := io.sell.PeekTopLive(); top != nil {
		s.BestAsk, s.HasBestAsk = top.Price, true
	}
	s.BuyDepth = io.buy.Len()
	s.SellDepth = io.sell.Len()
	return s
}
