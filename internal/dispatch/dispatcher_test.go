package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tickstore/internal/aggregate"
	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/model"
	"github.com/rickgao/tickstore/internal/schema"
	"github.com/rickgao/tickstore/internal/store/storetest"
	"github.com/rickgao/tickstore/internal/transport"
	"github.com/rickgao/tickstore/internal/writer"
)

type fixture struct {
	rec   *storetest.Recorder
	sub   *transport.ChanSubscriber
	d     *Dispatcher
	state *aggregate.State
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := storetest.NewRecorder()
	sub := transport.NewChanSubscriber(16)
	state := aggregate.NewState(aggregate.ResetPerSymbol)
	d := New("forex", sub,
		state,
		schema.NewManager(rec, nil, nil),
		writer.NewWriter(rec, nil, nil),
		nil, nil,
	)
	return &fixture{rec: rec, sub: sub, d: d, state: state}
}

func message(topic, typ, payload string) model.Message {
	return model.Message{
		Topic:      []byte(topic),
		Type:       []byte(typ),
		Payload:    []byte(payload),
		ReceivedAt: time.Now(),
	}
}

func tickArgs(t *testing.T, rec *storetest.Recorder) [][]any {
	t.Helper()
	var out [][]any
	for _, s := range rec.Statements() {
		if len(s.Args) == 10 {
			out = append(out, s.Args)
		}
	}
	return out
}

func TestHandle_CumulativeTicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticks := []string{
		`{"symbol":"EURUSD","bid":1.08,"price":1.081,"ask":1.082,"time":1700000000,"volume":10,"type":"B"}`,
		`{"symbol":"EURUSD","bid":1.08,"price":1.081,"ask":1.082,"time":1700000001,"volume":3,"type":"S"}`,
		`{"symbol":"EURUSD","bid":1.08,"price":1.081,"ask":1.082,"time":1700086400,"volume":5,"type":"B"}`,
	}
	for _, p := range ticks {
		require.NoError(t, f.d.Handle(ctx, message("FEUR", "TICK", p)))
	}

	assert.Equal(t, 1, f.rec.Count("CREATE TABLE IF NOT EXISTS forex.feur_tick"))

	rows := tickArgs(t, f.rec)
	require.Len(t, rows, 3)

	// cumbuy, cumsell, cumdelta
	assert.Equal(t, []any{int64(10), int64(0), int64(10)}, rows[0][7:])
	assert.Equal(t, []any{int64(10), int64(3), int64(7)}, rows[1][7:])
	assert.Equal(t, []any{int64(5), int64(0), int64(5)}, rows[2][7:])

	stats := f.d.Stats()
	assert.Equal(t, int64(3), stats.MessagesReceived)
	assert.Equal(t, int64(3), stats.MessagesPersisted)
	assert.Equal(t, int64(3), stats.RowsWritten)
}

func TestHandle_Book(t *testing.T) {
	f := newFixture(t)
	payload := `[
		{"symbol":"EURUSD","price":1.0841,"time":1700000000,"volume":100,"type":"BOOK_TYPE_BID"},
		{"symbol":"EURUSD","price":1.0843,"time":1700000000,"volume":50,"type":"BOOK_TYPE_ASK"}
	]`

	require.NoError(t, f.d.Handle(context.Background(), message("FEUR", "BOOK", payload)))

	assert.Equal(t, 1, f.rec.Count("CREATE TABLE IF NOT EXISTS forex.feur_book"))
	assert.Equal(t, 2, f.rec.Count("INSERT INTO forex.feur_book"))
	assert.Equal(t, int64(2), f.d.Stats().RowsWritten)
	assert.Equal(t, 0, f.state.Symbols())
}

func TestHandle_EmptyBook(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.d.Handle(context.Background(), message("FEUR", "BOOK", `[]`)))

	assert.Equal(t, 0, f.rec.Count("INSERT"))
	stats := f.d.Stats()
	assert.Zero(t, stats.DecodeErrors+stats.StorageErrors)
}

func TestHandle_MissingVolumeLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.d.Handle(ctx, message("FEUR", "TICK",
		`{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1700000000,"volume":10,"type":"B"}`)))
	before, _ := f.state.Snapshot("EURUSD")
	clockBefore, _ := f.state.LastProcessed()

	err := f.d.Handle(ctx, message("FEUR", "TICK",
		`{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1700090000,"type":"B"}`))
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.KindDecode))

	after, _ := f.state.Snapshot("EURUSD")
	clockAfter, _ := f.state.LastProcessed()
	assert.Equal(t, before, after)
	assert.Equal(t, clockBefore, clockAfter)
	assert.Equal(t, int64(1), f.d.Stats().DecodeErrors)
	assert.Equal(t, 1, f.rec.Count("INSERT"))
}

func TestHandle_UnknownTypeSkipped(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.d.Handle(context.Background(), message("FEUR", "QUOTE", `{}`)))

	assert.Empty(t, f.rec.Statements())
	assert.Equal(t, int64(1), f.d.Stats().MessagesSkipped)
}

func TestHandle_InvalidTopic(t *testing.T) {
	f := newFixture(t)
	msg := message("", "TICK", `{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1700000000,"volume":1,"type":"B"}`)
	msg.Topic = []byte{0xff, 0xfe}

	err := f.d.Handle(context.Background(), msg)
	assert.True(t, fault.Is(err, fault.KindDecode))
	assert.Equal(t, 0, f.state.Symbols())
	assert.Empty(t, f.rec.Statements())
}

func TestHandle_TimeOutOfRange(t *testing.T) {
	f := newFixture(t)

	err := f.d.Handle(context.Background(), message("FEUR", "TICK",
		`{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":-5,"volume":1,"type":"B"}`))
	assert.True(t, fault.Is(err, fault.KindAggregation))
	assert.Equal(t, int64(1), f.d.Stats().AggregationErrors)
	assert.Empty(t, f.rec.Statements())
}

func TestHandle_ProvisioningFailureRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rec.FailTimes("CREATE TABLE", errors.New("no hosts available"), 1)

	book := `[{"symbol":"EURUSD","price":1.1,"time":1700000000,"volume":1,"type":"BID"}]`

	err := f.d.Handle(ctx, message("FEUR", "BOOK", book))
	assert.True(t, fault.Is(err, fault.KindStorage))
	assert.Equal(t, 0, f.rec.Count("INSERT"))

	require.NoError(t, f.d.Handle(ctx, message("FEUR", "BOOK", book)))
	assert.Equal(t, 1, f.rec.Count("CREATE TABLE"))
	assert.Equal(t, 1, f.rec.Count("INSERT"))

	stats := f.d.Stats()
	assert.Equal(t, int64(1), stats.StorageErrors)
	assert.Equal(t, int64(1), stats.MessagesPersisted)
}

func TestRun_SurvivesMessageErrors(t *testing.T) {
	f := newFixture(t)
	f.rec.FailTimes("INSERT INTO forex.feur_tick", errors.New("write timeout"), 1)

	f.sub.Publish("FEUR", "TICK", []byte(`not json`))
	f.sub.PublishFrames([]byte("FEUR"), []byte("TICK"))
	f.sub.Publish("FEUR", "TICK", []byte(`{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1700000000,"volume":2,"type":"B"}`))
	f.sub.Publish("FEUR", "TICK", []byte(`{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1700000001,"volume":4,"type":"B"}`))
	f.sub.Fail(errors.New("socket closed by peer"))

	err := f.d.Run(context.Background())
	require.Error(t, err)
	assert.True(t, fault.IsFatal(err))

	stats := f.d.Stats()
	assert.Equal(t, int64(4), stats.MessagesReceived)
	assert.Equal(t, int64(2), stats.DecodeErrors)
	assert.Equal(t, int64(1), stats.StorageErrors)
	assert.Equal(t, int64(1), stats.MessagesPersisted)

	// The failed write still advanced the counters.
	rows := tickArgs(t, f.rec)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{int64(6), int64(0), int64(6)}, rows[0][7:])
}

func TestRun_ContextCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.d.Run(ctx) }()

	f.sub.Publish("FEUR", "TICK", []byte(`{"symbol":"EURUSD","bid":1,"price":1,"ask":1,"time":1700000000,"volume":1,"type":"S"}`))
	require.Eventually(t, func() bool { return f.d.Stats().MessagesPersisted == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
