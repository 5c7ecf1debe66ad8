package decode

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/model"
)

// OrderTypePrefix is stripped from book order types ("BOOK_TYPE_BUY" -> "BUY").
const OrderTypePrefix = "BOOK_TYPE_"

// Result is the outcome of decoding one payload.
// Exactly one of Books/Tick is meaningful, selected by Kind.
type Result struct {
	Kind  model.Kind
	Books []model.BookRecord
	Tick  model.TickRecord
}

// Decode parses payload according to the type tag. Unknown tags return a
// Result with KindUnknown and no error.
func Decode(tag []byte, payload []byte) (Result, error) {
	switch kind := model.ParseKind(tag); kind {
	case model.KindBook:
		books, err := DecodeBook(payload)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: kind, Books: books}, nil

	case model.KindTick:
		tick, err := DecodeTick(payload)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: kind, Tick: tick}, nil

	default:
		return Result{Kind: model.KindUnknown}, nil
	}
}

// DecodeBook parses a BOOK payload. The batch is all-or-nothing: one invalid
// entry fails the whole payload.
func DecodeBook(payload []byte) ([]model.BookRecord, error) {
	var entries *[]*bookWire
	if err := sonic.ConfigStd.Unmarshal(payload, &entries); err != nil {
		return nil, fault.Decode("decode book", err)
	}
	if entries == nil {
		return nil, fault.Decodef("decode book", "payload is null")
	}

	books := make([]model.BookRecord, 0, len(*entries))
	for i, wire := range *entries {
		if wire == nil {
			return nil, fault.Decodef("decode book", "entry %d is null", i)
		}
		rec, err := wire.record()
		if err != nil {
			return nil, fault.Decode("decode book", fmt.Errorf("entry %d: %w", i, err))
		}
		books = append(books, rec)
	}
	return books, nil
}

// DecodeTick parses a TICK payload.
func DecodeTick(payload []byte) (model.TickRecord, error) {
	var wire *tickWire
	if err := sonic.ConfigStd.Unmarshal(payload, &wire); err != nil {
		return model.TickRecord{}, fault.Decode("decode tick", err)
	}
	if wire == nil {
		return model.TickRecord{}, fault.Decodef("decode tick", "payload is null")
	}
	rec, err := wire.record()
	if err != nil {
		return model.TickRecord{}, fault.Decode("decode tick", err)
	}
	return rec, nil
}

// NormalizeOrderType removes the BOOK_TYPE_ prefix from an order type.
func NormalizeOrderType(orderType string) string {
	return strings.ReplaceAll(orderType, OrderTypePrefix, "")
}

func (w *bookWire) record() (model.BookRecord, error) {
	var (
		rec model.BookRecord
		err error
	)
	if rec.Symbol, err = requireString(w.Symbol, "symbol"); err != nil {
		return rec, err
	}
	if rec.Price, err = w.Price.float("price"); err != nil {
		return rec, err
	}
	if rec.Time, err = w.Time.integer("time"); err != nil {
		return rec, err
	}
	if rec.Volume, err = volume(w.Volume); err != nil {
		return rec, err
	}
	orderType, err := requireString(w.Type, "type")
	if err != nil {
		return rec, err
	}
	rec.OrderType = NormalizeOrderType(orderType)
	return rec, nil
}

func (w *tickWire) record() (model.TickRecord, error) {
	var (
		rec model.TickRecord
		err error
	)
	if rec.Symbol, err = requireString(w.Symbol, "symbol"); err != nil {
		return rec, err
	}
	if rec.Bid, err = w.Bid.float("bid"); err != nil {
		return rec, err
	}
	if rec.Price, err = w.Price.float("price"); err != nil {
		return rec, err
	}
	if rec.Ask, err = w.Ask.float("ask"); err != nil {
		return rec, err
	}
	if rec.Time, err = w.Time.integer("time"); err != nil {
		return rec, err
	}
	if rec.Volume, err = volume(w.Volume); err != nil {
		return rec, err
	}
	if rec.TradeType, err = requireString(w.Type, "type"); err != nil {
		return rec, err
	}
	return rec, nil
}

func volume(n number) (int64, error) {
	v, err := n.integer("volume")
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("field \"volume\": negative value %d", v)
	}
	return v, nil
}
