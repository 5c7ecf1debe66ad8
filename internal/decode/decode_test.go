package decode

import (
	"testing"

	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/model"
)

func TestDecode_Book(t *testing.T) {
	payload := []byte(`[
		{"symbol":"EURUSD","price":1.0921,"time":1705320000,"volume":5,"type":"BOOK_TYPE_BUY"},
		{"symbol":"EURUSD","price":1.0923,"time":1705320000,"volume":7,"type":"BOOK_TYPE_SELL","level":2}
	]`)

	res, err := Decode([]byte("BOOK"), payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res.Kind != model.KindBook {
		t.Fatalf("Kind = %q, want BOOK", res.Kind)
	}
	if len(res.Books) != 2 {
		t.Fatalf("len(Books) = %d, want 2", len(res.Books))
	}

	b := res.Books[0]
	if b.Symbol != "EURUSD" {
		t.Errorf("Symbol = %q, want EURUSD", b.Symbol)
	}
	if b.Price != 1.0921 {
		t.Errorf("Price = %v, want 1.0921", b.Price)
	}
	if b.Time != 1705320000 {
		t.Errorf("Time = %d, want 1705320000", b.Time)
	}
	if b.Volume != 5 {
		t.Errorf("Volume = %d, want 5", b.Volume)
	}
	if b.OrderType != "BUY" {
		t.Errorf("OrderType = %q, want BUY", b.OrderType)
	}
	if res.Books[1].OrderType != "SELL" {
		t.Errorf("OrderType = %q, want SELL", res.Books[1].OrderType)
	}
}

func TestDecode_BookEmpty(t *testing.T) {
	res, err := Decode([]byte("BOOK"), []byte(`[]`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(res.Books) != 0 {
		t.Errorf("len(Books) = %d, want 0", len(res.Books))
	}
}

func TestDecode_Tick(t *testing.T) {
	payload := []byte(`{"symbol":"EURUSD","bid":1.0920,"price":1.0921,"ask":1.0922,"time":1705320000,"volume":10,"type":"B","venue":"x"}`)

	res, err := Decode([]byte("TICK"), payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res.Kind != model.KindTick {
		t.Fatalf("Kind = %q, want TICK", res.Kind)
	}

	want := model.TickRecord{
		Symbol:    "EURUSD",
		Bid:       1.0920,
		Price:     1.0921,
		Ask:       1.0922,
		Time:      1705320000,
		Volume:    10,
		TradeType: "B",
	}
	if res.Tick != want {
		t.Errorf("Tick = %+v, want %+v", res.Tick, want)
	}
}

func TestDecode_TickTextualNumbers(t *testing.T) {
	payload := []byte(`{"symbol":"WINFUT","bid":"127350","price":"127355.5","ask":"127360","time":"1705320000","volume":"3","type":"S"}`)

	tick, err := DecodeTick(payload)
	if err != nil {
		t.Fatalf("DecodeTick failed: %v", err)
	}
	if tick.Price != 127355.5 {
		t.Errorf("Price = %v, want 127355.5", tick.Price)
	}
	if tick.Time != 1705320000 {
		t.Errorf("Time = %d, want 1705320000", tick.Time)
	}
	if tick.Volume != 3 {
		t.Errorf("Volume = %d, want 3", tick.Volume)
	}
}

func TestDecode_TickIntegralFloat(t *testing.T) {
	payload := []byte(`{"symbol":"X","bid":1,"price":1,"ask":1,"time":1.7053200e9,"volume":10.0,"type":"B"}`)

	tick, err := DecodeTick(payload)
	if err != nil {
		t.Fatalf("DecodeTick failed: %v", err)
	}
	if tick.Time != 1705320000 {
		t.Errorf("Time = %d, want 1705320000", tick.Time)
	}
	if tick.Volume != 10 {
		t.Errorf("Volume = %d, want 10", tick.Volume)
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	res, err := Decode([]byte("QUOTE"), []byte(`not even json`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res.Kind != model.KindUnknown {
		t.Errorf("Kind = %q, want unknown", res.Kind)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		payload string
	}{
		{"tick missing volume", "TICK", `{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1705320000,"type":"B"}`},
		{"tick null symbol", "TICK", `{"symbol":null,"bid":1,"price":1,"ask":1,"time":1705320000,"volume":1,"type":"B"}`},
		{"tick non-numeric price", "TICK", `{"symbol":"EURUSD","bid":1,"price":"abc","ask":1,"time":1705320000,"volume":1,"type":"B"}`},
		{"tick fractional volume", "TICK", `{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1705320000,"volume":1.5,"type":"B"}`},
		{"tick negative volume", "TICK", `{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1705320000,"volume":-4,"type":"B"}`},
		{"tick NaN bid", "TICK", `{"symbol":"EURUSD","bid":"NaN","price":1,"ask":1,"time":1705320000,"volume":1,"type":"B"}`},
		{"tick array", "TICK", `[{"symbol":"EURUSD"}]`},
		{"tick null", "TICK", `null`},
		{"tick malformed", "TICK", `{"symbol":`},
		{"book object", "BOOK", `{"symbol":"EURUSD","price":1,"time":1,"volume":1,"type":"BOOK_TYPE_BUY"}`},
		{"book null", "BOOK", `null`},
		{"book null entry", "BOOK", `[null]`},
		{"book missing type", "BOOK", `[{"symbol":"EURUSD","price":1,"time":1,"volume":1}]`},
		{"book one bad entry", "BOOK", `[{"symbol":"A","price":1,"time":1,"volume":1,"type":"t"},{"symbol":"B","price":"x","time":1,"volume":1,"type":"t"}]`},
		{"book symbol wrong type", "BOOK", `[{"symbol":5,"price":1,"time":1,"volume":1,"type":"t"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.tag), []byte(tt.payload))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !fault.Is(err, fault.KindDecode) {
				t.Errorf("error kind = %v, want decode (err: %v)", fault.KindOf(err), err)
			}
		})
	}
}

func TestNormalizeOrderType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BOOK_TYPE_BUY", "BUY"},
		{"BOOK_TYPE_SELL", "SELL"},
		{"SELL", "SELL"},
		{"", ""},
		{"BOOK_TYPE_", ""},
	}

	for _, tt := range tests {
		if got := NormalizeOrderType(tt.in); got != tt.want {
			t.Errorf("NormalizeOrderType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
