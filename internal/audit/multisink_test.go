package audit

import "testing"

type countingSink struct {
	added, executed, deleted int
}

func (s *countingSink) OrderAdded(OrderAdded)       { s.added++ }
func (s *countingSink) OrderExecuted(OrderExecuted) { s.executed++ }
func (s *countingSink) OrderDeleted(OrderDeleted)   { s.deleted++ }

func TestMultiSinkForwardsToEverySink(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	multi := NewMultiSink(a, b)

	multi.OrderAdded(OrderAdded{ID: 1})
	multi.OrderExecuted(OrderExecuted{RestingID: 1})
	multi.OrderDeleted(OrderDeleted{ID: 1})

	for name, s := range map[string]*countingSink{"a": a, "b": b} {
		if s.added != 1 || s.executed != 1 || s.deleted != 1 {
			t.Fatalf("sink %s did not receive exactly one of each event: %+v", name, s)
		}
	}
}

func TestMultiSinkWithNoSinksIsANoop(t *testing.T) {
	multi := NewMultiSink()
	multi.OrderAdded(OrderAdded{ID: 1})
}
