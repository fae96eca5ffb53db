// Package transport is a raw TCP listener decoding a fixed binary wire
// format into matching.ClientCommand values, one worker per accepted
// connection.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/tradsys/matchcore/internal/matching"
)

// frameLen is the fixed size, in bytes, of one wire record: 1 (kind) + 4
// (order_id) + 4 (price) + 4 (count) + 8 (instrument) = 21 bytes.
const frameLen = 1 + 4 + 4 + 4 + 8

const (
	wireBuy    byte = 0
	wireSell   byte = 1
	wireCancel byte = 2
)

// ErrFraming is returned (wrapped) for any malformed frame: a short read,
// an unknown kind byte, or a decoded command that fails validation.
var ErrFraming = errors.New("transport: framing error")

// wireCommand mirrors matching.ClientCommand with validator tags; it
// exists only as the decode target so struct validation runs before a
// command is handed to the core.
type wireCommand struct {
	Kind       byte   `validate:"oneof=0 1 2"`
	OrderID    uint32
	Price      uint32
	Count      uint32
	Instrument string `validate:"max=8"`
}

var validate = validator.New()

// Codec decodes frames from an io.Reader into matching.ClientCommand
// values, using go-playground/validator/v10 for bounds checking.
type Codec struct{}

// Decode reads exactly one frame from r. io.EOF is returned unmodified so
// callers can distinguish a clean connection close from a framing error;
// any other error is wrapped in ErrFraming.
func (Codec) Decode(r io.Reader) (matching.ClientCommand, error) {
	var buf [frameLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return matching.ClientCommand{}, io.EOF
		}
		return matching.ClientCommand{}, fmt.Errorf("%w: %v", ErrFraming, err)
	}

	kindByte := buf[0]
	orderID := binary.BigEndian.Uint32(buf[1:5])
	price := binary.BigEndian.Uint32(buf[5:9])
	count := binary.BigEndian.Uint32(buf[9:13])
	instrument := decodeInstrument(buf[13:21])

	kind, err := decodeKind(kindByte)
	if err != nil {
		return matching.ClientCommand{}, err
	}

	wc := wireCommand{Kind: kindByte, OrderID: orderID, Price: price, Count: count, Instrument: instrument}
	if kind != matching.Cancel {
		if price == 0 || count == 0 {
			return matching.ClientCommand{}, fmt.Errorf("%w: price and count must be positive", ErrFraming)
		}
	}
	if err := validate.Struct(wc); err != nil {
		return matching.ClientCommand{}, fmt.Errorf("%w: %v", ErrFraming, err)
	}

	return matching.ClientCommand{
		Kind:       kind,
		OrderID:    orderID,
		Price:      price,
		Count:      count,
		Instrument: instrument,
	}, nil
}

func decodeKind(b byte) (matching.Kind, error) {
	switch b {
	case wireBuy:
		return matching.Buy, nil
	case wireSell:
		return matching.Sell, nil
	case wireCancel:
		return matching.Cancel, nil
	default:
		return 0, fmt.Errorf("%w: unknown command kind %d", ErrFraming, b)
	}
}

func decodeInstrument(raw []byte) string {
	n := len(raw)
	for n > 0 && raw[n-1] == 0 {
		n--
	}
	return string(raw[:n])
}

// Encode serializes cmd back to wire format; provided for symmetry and
// for tests that round-trip a command through the codec.
func (Codec) Encode(cmd matching.ClientCommand) []byte {
	buf := make([]byte, frameLen)
	switch cmd.Kind {
	case matching.Buy:
		buf[0] = wireBuy
	case matching.Sell:
		buf[0] = wireSell
	case matching.Cancel:
		buf[0] = wireCancel
	}
	binary.BigEndian.PutUint32(buf[1:5], cmd.OrderID)
	binary.BigEndian.PutUint32(buf[5:9], cmd.Price)
	binary.BigEndian.PutUint32(buf[9:13], cmd.Count)
	copy(buf[13:21], cmd.Instrument)
	return buf
}
