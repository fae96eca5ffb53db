package transport

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/tradsys/matchcore/internal/matching"
)

func TestCodecRoundTripsBuyCommand(t *testing.T) {
	codec := Codec{}
	want := matching.ClientCommand{Kind: matching.Buy, OrderID: 7, Price: 100, Count: 5, Instrument: "AAPL"}

	wire := codec.Encode(want)
	if len(wire) != frameLen {
		t.Fatalf("expected a %d-byte frame, got %d", frameLen, len(wire))
	}

	got, err := codec.Decode(bytes.NewReader(wire))
	if err != nil {
		t.Fatalf("decode returned an error: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestCodecRoundTripsCancelCommandWithZeroOrderID(t *testing.T) {
	codec := Codec{}
	want := matching.ClientCommand{Kind: matching.Cancel, OrderID: 0}

	got, err := codec.Decode(bytes.NewReader(codec.Encode(want)))
	if err != nil {
		t.Fatalf("decode returned an error for a zero order id: %v", err)
	}
	if got.Kind != matching.Cancel || got.OrderID != 0 {
		t.Fatalf("unexpected decode result: %+v", got)
	}
}

func TestCodecRejectsShortFrameAsFraming(t *testing.T) {
	codec := Codec{}
	_, err := codec.Decode(bytes.NewReader(make([]byte, frameLen-1)))
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected a framing error for a truncated frame, got %v", err)
	}
	if !errors.Is(err, ErrFraming) {
		t.Fatalf("expected ErrFraming, got %v", err)
	}
}

func TestCodecReturnsEOFOnEmptyReader(t *testing.T) {
	codec := Codec{}
	_, err := codec.Decode(bytes.NewReader(nil))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on an empty reader, got %v", err)
	}
}

func TestCodecRejectsUnknownKindByte(t *testing.T) {
	codec := Codec{}
	buf := make([]byte, frameLen)
	buf[0] = 9
	_, err := codec.Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrFraming) {
		t.Fatalf("expected ErrFraming for an unknown kind byte, got %v", err)
	}
}

func TestCodecRejectsZeroPriceOnBuy(t *testing.T) {
	codec := Codec{}
	want := matching.ClientCommand{Kind: matching.Buy, OrderID: 1, Price: 0, Count: 5, Instrument: "AAPL"}
	_, err := codec.Decode(bytes.NewReader(codec.Encode(want)))
	if !errors.Is(err, ErrFraming) {
		t.Fatalf("expected ErrFraming for a zero-priced buy, got %v", err)
	}
}
