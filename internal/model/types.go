package model

import "time"

// Kind identifies the record kind carried by a message, taken from its type tag.
type Kind string

const (
	KindBook    Kind = "BOOK"
	KindTick    Kind = "TICK"
	KindUnknown Kind = ""
)

// ParseKind maps a raw type tag to a Kind. Unrecognized tags map to KindUnknown.
func ParseKind(tag []byte) Kind {
	switch string(tag) {
	case string(KindBook):
		return KindBook
	case string(KindTick):
		return KindTick
	default:
		return KindUnknown
	}
}

// TableSuffix returns the storage table suffix for the kind ("book" or "tick").
func (k Kind) TableSuffix() string {
	switch k {
	case KindBook:
		return "book"
	case KindTick:
		return "tick"
	default:
		return ""
	}
}

// String returns the type tag, or "unknown".
func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Trade types on a tick.
const (
	TradeBuy  = "B"
	TradeSell = "S"
)

// -----------------------------------------------------------------------------
// Inbound
// -----------------------------------------------------------------------------

// Message is one framed message as delivered by the subscribe channel:
// [topic, type tag, payload].
type Message struct {
	Topic      []byte    // Raw topic frame, expected to be UTF-8
	Type       []byte    // Type tag frame ("BOOK", "TICK", ...)
	Payload    []byte    // JSON payload
	ReceivedAt time.Time // Local timestamp when the transport returned the message
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

// BookRecord is one price level of an order-book snapshot.
type BookRecord struct {
	Symbol    string
	Price     float64
	Time      int64 // Seconds since epoch
	Volume    int64
	OrderType string // Normalized: "BOOK_TYPE_" prefix removed
}

// TickRecord is a single trade tick.
type TickRecord struct {
	Symbol    string
	Bid       float64
	Price     float64 // Trade price
	Ask       float64
	Time      int64 // Seconds since epoch
	Volume    int64
	TradeType string // "B", "S", or anything else (ignored for aggregation)
}

// Cumulative holds the running buy/sell volume of a symbol since its last reset.
type Cumulative struct {
	Buy  int64
	Sell int64
}

// Delta returns Buy - Sell.
func (c Cumulative) Delta() int64 {
	return c.Buy - c.Sell
}

// EnrichedTick is a tick with the cumulative values observed after applying it.
type EnrichedTick struct {
	TickRecord
	Cumulative Cumulative
}

// Timestamp converts epoch seconds to a UTC time.Time.
func Timestamp(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
