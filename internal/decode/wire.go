package decode

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Wire types for JSON parsing. Every field is required; pointers and the
// set flag on number distinguish absent/null from zero.

// bookWire is the wire format for one entry of a BOOK payload.
type bookWire struct {
	Symbol *string `json:"symbol"`
	Price  number  `json:"price"`
	Time   number  `json:"time"` // Seconds since epoch
	Volume number  `json:"volume"`
	Type   *string `json:"type"` // e.g. "BOOK_TYPE_BUY"
}

// tickWire is the wire format for a TICK payload.
type tickWire struct {
	Symbol *string `json:"symbol"`
	Bid    number  `json:"bid"`
	Price  number  `json:"price"`
	Ask    number  `json:"ask"`
	Time   number  `json:"time"`
	Volume number  `json:"volume"`
	Type   *string `json:"type"` // "B", "S", ...
}

// number is a JSON numeric field that also accepts its textual form ("1.25").
type number struct {
	raw string
	set bool
}

var errNotNumeric = errors.New("not a number")

// UnmarshalJSON implements json.Unmarshaler.
func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		n.raw = s
	} else {
		n.raw = string(data)
	}
	n.set = true
	return nil
}

// float returns the value as a finite float64.
func (n number) float(field string) (float64, error) {
	if !n.set {
		return 0, fmt.Errorf("missing field %q", field)
	}
	f, err := strconv.ParseFloat(n.raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("field %q: %q: %w", field, n.raw, errNotNumeric)
	}
	return f, nil
}

// int returns the value as an int64. Integral floats ("10.0", 1.7e9) are accepted.
func (n number) integer(field string) (int64, error) {
	if !n.set {
		return 0, fmt.Errorf("missing field %q", field)
	}
	if i, err := strconv.ParseInt(n.raw, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(n.raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("field %q: %q: %w", field, n.raw, errNotNumeric)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("field %q: %q is not an integer", field, n.raw)
	}
	return int64(f), nil
}

func requireString(s *string, field string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("missing field %q", field)
	}
	return *s, nil
}
