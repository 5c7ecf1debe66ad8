package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/metrics"
	"github.com/rickgao/tickstore/internal/model"
	"github.com/rickgao/tickstore/internal/schema"
	"github.com/rickgao/tickstore/internal/store"
)

// Writer upserts book and tick rows.
type Writer struct {
	session store.Session
	logger  *slog.Logger
	metrics *metrics.Pipeline

	mu    sync.Mutex
	stats Stats
}

// Stats contains writer statistics.
type Stats struct {
	BookRows   int64
	TickRows   int64
	BookErrors int64
	TickErrors int64
}

// NewWriter creates a Writer.
func NewWriter(session store.Session, m *metrics.Pipeline, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		session: session,
		logger:  logger,
		metrics: m,
	}
}

// InsertBook writes each level of a book snapshot to <topic>_book.
// Levels already written stay written if a later level fails.
func (w *Writer) InsertBook(ctx context.Context, keyspace, topic string, rows []model.BookRecord) error {
	if len(rows) == 0 {
		return nil
	}

	t, err := schema.NewTable(keyspace, topic, model.KindBook)
	if err != nil {
		return fault.Storage("insert book", err)
	}
	stmt := schema.InsertCQL(t)

	written := 0
	for _, r := range rows {
		if err := w.session.Exec(ctx, stmt, bookArgs(r)...); err != nil {
			w.record(model.KindBook, written, true)
			w.logger.Error("book insert failed",
				"table", t.Qualified(),
				"symbol", r.Symbol,
				"written", written,
				"count", len(rows),
				"error", err,
			)
			return fault.Storage(fmt.Sprintf("insert book level %d/%d into %s", written+1, len(rows), t.Qualified()), err)
		}
		written++
	}

	w.record(model.KindBook, written, false)
	w.logger.Debug("book written",
		"table", t.Qualified(),
		"count", written,
	)
	return nil
}

// InsertTick writes one enriched tick to <topic>_tick.
func (w *Writer) InsertTick(ctx context.Context, keyspace, topic string, tick model.EnrichedTick) error {
	t, err := schema.NewTable(keyspace, topic, model.KindTick)
	if err != nil {
		return fault.Storage("insert tick", err)
	}

	if err := w.session.Exec(ctx, schema.InsertCQL(t), tickArgs(tick)...); err != nil {
		w.record(model.KindTick, 0, true)
		w.logger.Error("tick insert failed",
			"table", t.Qualified(),
			"symbol", tick.Symbol,
			"error", err,
		)
		return fault.Storage("insert tick into "+t.Qualified(), err)
	}

	w.record(model.KindTick, 1, false)
	return nil
}

// Stats returns current statistics.
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Writer) record(kind model.Kind, rows int, failed bool) {
	w.mu.Lock()
	switch kind {
	case model.KindBook:
		w.stats.BookRows += int64(rows)
		if failed {
			w.stats.BookErrors++
		}
	case model.KindTick:
		w.stats.TickRows += int64(rows)
		if failed {
			w.stats.TickErrors++
		}
	}
	w.mu.Unlock()

	w.metrics.AddRows(kind, rows)
	if failed {
		w.metrics.WriteError(kind)
	}
}

// bookArgs binds r in InsertCQL column order.
func bookArgs(r model.BookRecord) []any {
	return []any{
		r.Symbol,
		r.Price,
		model.Timestamp(r.Time),
		r.Volume,
		r.OrderType,
	}
}

// tickArgs binds t in InsertCQL column order.
func tickArgs(t model.EnrichedTick) []any {
	return []any{
		t.Symbol,
		t.Bid,
		t.Price,
		t.Ask,
		model.Timestamp(t.Time),
		t.Volume,
		t.TradeType,
		t.Cumulative.Buy,
		t.Cumulative.Sell,
		t.Cumulative.Delta(),
	}
}
