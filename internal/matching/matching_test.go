package matching

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tradsys/matchcore/internal/audit"
)

// recordingSink captures every event emitted during a test so assertions
// can inspect the exact sequence without depending on a real transport.
type recordingSink struct {
	mu       sync.Mutex
	added    []audit.OrderAdded
	executed []audit.OrderExecuted
	deleted  []audit.OrderDeleted
}

func (s *recordingSink) OrderAdded(e audit.OrderAdded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, e)
}

func (s *recordingSink) OrderExecuted(e audit.OrderExecuted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executed = append(s.executed, e)
}

func (s *recordingSink) OrderDeleted(e audit.OrderDeleted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, e)
}

// fakeClock hands out strictly increasing timestamps, one per call, so
// tests can assert exact price-time tie-break order deterministically.
func fakeClock() Clock {
	var n int64
	return func() int64 {
		n++
		return n
	}
}

type RouterTestSuite struct {
	suite.Suite
	sink   *recordingSink
	router *Router
}

func (s *RouterTestSuite) SetupTest() {
	s.sink = &recordingSink{}
	s.router = NewRouter(s.sink, fakeClock())
}

func (s *RouterTestSuite) dispatch(cmds ...ClientCommand) {
	for _, c := range cmds {
		s.router.Dispatch(c)
	}
}

func (s *RouterTestSuite) TestRestingOrderWithNoCross() {
	s.dispatch(ClientCommand{Kind: Buy, OrderID: 1, Instrument: "AAPL", Price: 100, Count: 10})

	s.Require().Len(s.sink.added, 1)
	s.Equal(uint32(1), s.sink.added[0].ID)
	s.Empty(s.sink.executed)
}

func (s *RouterTestSuite) TestFullFillConsumesRestingOrder() {
	s.dispatch(
		ClientCommand{Kind: Buy, OrderID: 1, Instrument: "AAPL", Price: 100, Count: 10},
		ClientCommand{Kind: Sell, OrderID: 2, Instrument: "AAPL", Price: 100, Count: 10},
	)

	s.Require().Len(s.sink.executed, 1)
	exec := s.sink.executed[0]
	s.Equal(uint32(1), exec.RestingID)
	s.Equal(uint32(2), exec.IncomingID)
	s.Equal(uint32(1), exec.ExecutionID)
	s.Equal(uint32(100), exec.Price)
	s.Equal(uint32(10), exec.Qty)

	snaps := s.router.Snapshot()
	s.Require().Len(snaps, 1)
	s.Equal(0, snaps[0].BuyDepth)
}

func (s *RouterTestSuite) TestPartialFillLeavesRemainderResting() {
	s.dispatch(
		ClientCommand{Kind: Buy, OrderID: 1, Instrument: "AAPL", Price: 100, Count: 10},
		ClientCommand{Kind: Sell, OrderID: 2, Instrument: "AAPL", Price: 100, Count: 4},
	)

	s.Require().Len(s.sink.executed, 1)
	s.Equal(uint32(4), s.sink.executed[0].Qty)

	snap := s.router.Snapshot()[0]
	s.Equal(1, snap.BuyDepth)
	s.True(snap.HasBestBid)
	s.Equal(uint32(100), snap.BestBid)
}

func (s *RouterTestSuite) TestIncomingOrderSweepsMultipleRestingOrders() {
	s.dispatch(
		ClientCommand{Kind: Sell, OrderID: 1, Instrument: "AAPL", Price: 100, Count: 5},
		ClientCommand{Kind: Sell, OrderID: 2, Instrument: "AAPL", Price: 101, Count: 5},
		ClientCommand{Kind: Buy, OrderID: 3, Instrument: "AAPL", Price: 101, Count: 8},
	)

	s.Require().Len(s.sink.executed, 2)
	// price-time priority: the lower sell price (100) is consumed first.
	s.Equal(uint32(1), s.sink.executed[0].RestingID)
	s.Equal(uint32(5), s.sink.executed[0].Qty)
	s.Equal(uint32(2), s.sink.executed[1].RestingID)
	s.Equal(uint32(3), s.sink.executed[1].Qty)

	snap := s.router.Snapshot()[0]
	s.Equal(1, snap.SellDepth)
	s.Equal(uint32(101), snap.BestAsk)
}

func (s *RouterTestSuite) TestPriceTimePriorityTieBreaksOnEarlierTimestamp() {
	s.dispatch(
		ClientCommand{Kind: Buy, OrderID: 1, Instrument: "AAPL", Price: 100, Count: 5},
		ClientCommand{Kind: Buy, OrderID: 2, Instrument: "AAPL", Price: 100, Count: 5},
		ClientCommand{Kind: Sell, OrderID: 3, Instrument: "AAPL", Price: 100, Count: 5},
	)

	s.Require().Len(s.sink.executed, 1)
	s.Equal(uint32(1), s.sink.executed[0].RestingID)
}

func (s *RouterTestSuite) TestCancelOfRestingOrderIsAcceptedOnce() {
	s.dispatch(
		ClientCommand{Kind: Buy, OrderID: 1, Instrument: "AAPL", Price: 100, Count: 10},
		ClientCommand{Kind: Cancel, OrderID: 1},
		ClientCommand{Kind: Cancel, OrderID: 1},
	)

	s.Require().Len(s.sink.deleted, 2)
	s.True(s.sink.deleted[0].Accepted)
	s.False(s.sink.deleted[1].Accepted)
}

func (s *RouterTestSuite) TestCancelOfUnknownOrderIsRejected() {
	s.dispatch(ClientCommand{Kind: Cancel, OrderID: 99})

	s.Require().Len(s.sink.deleted, 1)
	s.False(s.sink.deleted[0].Accepted)
}

func (s *RouterTestSuite) TestCancelDoesNotRequireInstrumentRouting() {
	s.dispatch(
		ClientCommand{Kind: Buy, OrderID: 1, Instrument: "AAPL", Price: 100, Count: 10},
		ClientCommand{Kind: Cancel, OrderID: 1, Instrument: ""},
	)

	s.Require().Len(s.sink.deleted, 1)
	s.True(s.sink.deleted[0].Accepted)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestCrossPredicate(t *testing.T) {
	buyAt100 := &Order{Kind: Buy, Price: 100}
	if !buyAt100.crosses(ClientCommand{Kind: Sell, Price: 100}) {
		t.Fatal("buy at 100 should cross an incoming sell at 100")
	}
	if buyAt100.crosses(ClientCommand{Kind: Sell, Price: 101}) {
		t.Fatal("buy at 100 should not cross an incoming sell at 101")
	}

	sellAt100 := &Order{Kind: Sell, Price: 100}
	if !sellAt100.crosses(ClientCommand{Kind: Buy, Price: 100}) {
		t.Fatal("sell at 100 should cross an incoming buy at 100")
	}
	if sellAt100.crosses(ClientCommand{Kind: Buy, Price: 99}) {
		t.Fatal("sell at 100 should not cross an incoming buy at 99")
	}
}

func TestLessComparatorOrdersBuyBookByHighestPriceThenEarliestTime(t *testing.T) {
	high := &Order{Kind: Buy, Price: 101, Timestamp: 5}
	low := &Order{Kind: Buy, Price: 100, Timestamp: 1}
	if !less(high, low) {
		t.Fatal("higher-priced buy should sort before a lower-priced one")
	}

	earlier := &Order{Kind: Buy, Price: 100, Timestamp: 1}
	later := &Order{Kind: Buy, Price: 100, Timestamp: 2}
	if !less(earlier, later) {
		t.Fatal("earlier timestamp should win a buy-side price tie")
	}
}

func TestLessComparatorOrdersSellBookByLowestPriceThenEarliestTime(t *testing.T) {
	low := &Order{Kind: Sell, Price: 99, Timestamp: 5}
	high := &Order{Kind: Sell, Price: 100, Timestamp: 1}
	if !less(low, high) {
		t.Fatal("lower-priced sell should sort before a higher-priced one")
	}
}
