package matching

import (
	"container/heap"
	"sync"
)

// orderHeap is the container/heap-compatible priority queue backing one
// side of one instrument's book. It holds only a heap.Interface
// implementation; liveness is tracked separately by the shared
// livenessMap, so popping a stale entry here is just bookkeeping.
type orderHeap []*Order

func (h orderHeap) Len() int            { return len(h) }
func (h orderHeap) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h orderHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *orderHeap) Push(x interface{}) {
	o := x.(*Order)
	o.index = len(*h)
	*h = append(*h, o)
}
func (h *orderHeap) Pop() interface{} {
	old := *h
	n := len(old)
	o := old[n-1]
	old[n-1] = nil
	o.index = -1
	*h = old[:n-1]
	return o
}

// OrderBook is one side (buy or sell) of one instrument's resting book:
// a price-time priority queue plus the hooks into the shared liveness map.
type OrderBook struct {
	side Kind
	mu   sync.Mutex
	heap orderHeap
	live *livenessMap
}

func newOrderBook(side Kind, live *livenessMap) *OrderBook {
	h := make(orderHeap, 0)
	heap.Init(&h)
	return &OrderBook{side: side, heap: h, live: live}
}

// Len reports the number of heap entries, live or stale. It is intended
// for stats/snapshot reporting, not for match-loop decisions.
func (b *OrderBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.heap.Len()
}

// peekTopLiveLocked repeatedly inspects the heap top, discarding ended
// entries (lazy deletion), until a live top is found or the heap is
// exhausted. The caller must hold b.mu; the map lock is taken internally
// per lookup and never held across the heap pop.
func (b *OrderBook) peekTopLiveLocked() *Order {
	for b.heap.Len() > 0 {
		top := b.heap[0]
		if b.live.isEnded(top.OrderID) {
			heap.Pop(&b.heap)
			continue
		}
		return top
	}
	return nil
}

// PeekTopLive is the exported, self-locking form used by callers that do
// not already hold b.mu (stats, snapshots). The match loop uses the
// locked primitives below directly so it can hold the queue lock across
// a short sequence of steps.
func (b *OrderBook) PeekTopLive() *Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peekTopLiveLocked()
}

// popTopIfLiveLocked pops the current heap top; if that id was already
// ended (lost a race with a concurrent cancel or fill), it returns false
// and the caller must re-peek. Otherwise it marks the id ended and
// returns true — this is the only way a resting order is consumed in
// full by a match.
func (b *OrderBook) popTopIfLiveLocked() (*Order, bool) {
	if b.heap.Len() == 0 {
		return nil, false
	}
	top := b.heap[0]
	heap.Pop(&b.heap)
	if !b.live.endIfLive(top.OrderID) {
		return top, false
	}
	return top, true
}

// replaceTopIfLiveLocked pops the top; if ended, returns false (caller
// retries). Otherwise it pushes newOrder — a mutated copy of the same id
// with decremented count and incremented execution id — in the popped
// order's place and returns true. newOrder's price and timestamp must be
// unchanged from the popped order's, preserving the comparator's key.
func (b *OrderBook) replaceTopIfLiveLocked(newOrder *Order) (*Order, bool) {
	if b.heap.Len() == 0 {
		return nil, false
	}
	top := b.heap[0]
	heap.Pop(&b.heap)
	if b.live.isEnded(top.OrderID) {
		return top, false
	}
	heap.Push(&b.heap, newOrder)
	return top, true
}

// tryAddResting is the joint-locked "rest or retry" decision: under the
// joint lock of both books (acquired by the caller in the fixed global
// order buy-before-sell, see instrument.go), peek the opposite book (the
// map lock is taken per lookup and per register, not held throughout); if a crossing top now exists, the caller must retry the
// match loop instead of resting. Otherwise construct the Order, push it
// onto own's heap, and register it live.
func tryAddResting(cmd ClientCommand, own, opp *OrderBook, ts int64) (ok bool) {
	if crossingTop := opp.peekTopLiveLocked(); crossingTop != nil && crossingTop.crosses(cmd) {
		return false
	}
	o := newOrder(cmd, ts)
	heap.Push(&own.heap, o)
	own.live.register(o.OrderID)
	return true
}
