package audit

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestLogSinkWritesAppendOnlyFileAndMintsRunID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	sink, err := NewLogSink(path, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLogSink returned an error: %v", err)
	}
	if sink.RunID() == "" {
		t.Fatal("expected a non-empty run id")
	}

	sink.OrderAdded(OrderAdded{ID: 1, Instrument: "AAPL", Price: 100, Count: 5})
	sink.OrderExecuted(OrderExecuted{RestingID: 1, IncomingID: 2, ExecutionID: 1, Price: 100, Qty: 5})
	sink.OrderDeleted(OrderDeleted{ID: 3, Accepted: false})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected the audit file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected the audit file to contain written records")
	}
}

func TestLogSinkWithEmptyPathStillWorks(t *testing.T) {
	sink, err := NewLogSink("", zap.NewNop())
	if err != nil {
		t.Fatalf("NewLogSink returned an error: %v", err)
	}
	sink.OrderAdded(OrderAdded{ID: 1})
}
