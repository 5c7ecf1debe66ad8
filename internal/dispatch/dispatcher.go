package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rickgao/tickstore/internal/aggregate"
	"github.com/rickgao/tickstore/internal/decode"
	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/metrics"
	"github.com/rickgao/tickstore/internal/model"
	"github.com/rickgao/tickstore/internal/transport"
)

// Provisioner creates destination tables on first use.
type Provisioner interface {
	EnsureTable(ctx context.Context, keyspace, topic string, kind model.Kind) error
}

// RecordWriter persists decoded records.
type RecordWriter interface {
	InsertBook(ctx context.Context, keyspace, topic string, rows []model.BookRecord) error
	InsertTick(ctx context.Context, keyspace, topic string, tick model.EnrichedTick) error
}

// Stats contains runtime statistics.
type Stats struct {
	MessagesReceived  int64
	MessagesPersisted int64
	MessagesSkipped   int64 // Unknown type tag
	DecodeErrors      int64
	AggregationErrors int64
	StorageErrors     int64
	RowsWritten       int64
	LastMessageAt     time.Time
}

// Dispatcher owns the aggregation state and drives one message at a time
// through decode, aggregation, provisioning and write.
type Dispatcher struct {
	keyspace string
	logger   *slog.Logger
	metrics  *metrics.Pipeline

	subscriber transport.Subscriber
	state      *aggregate.State
	schema     Provisioner
	writer     RecordWriter

	mu    sync.RWMutex
	stats Stats
}

// New creates a Dispatcher writing into keyspace.
func New(
	keyspace string,
	subscriber transport.Subscriber,
	state *aggregate.State,
	schema Provisioner,
	writer RecordWriter,
	m *metrics.Pipeline,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if state == nil {
		state = aggregate.NewState(aggregate.ResetPerSymbol)
	}
	return &Dispatcher{
		keyspace:   keyspace,
		logger:     logger,
		metrics:    m,
		subscriber: subscriber,
		state:      state,
		schema:     schema,
		writer:     writer,
	}
}

// Run receives and handles messages until ctx is done (returns nil) or the
// subscription fails (returns the transport error).
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started",
		"keyspace", d.keyspace,
		"day_reset", d.state.Policy(),
	)

	for {
		msg, err := d.subscriber.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("dispatcher stopped")
				return nil
			}
			if fault.IsFatal(err) {
				d.logger.Error("subscription failed", "error", err)
				return err
			}
			// Malformed frame set; nothing to hand to the pipeline.
			d.record(time.Now(), model.KindUnknown, 0, err, 0)
			d.logger.Warn("message dropped", "kind", fault.KindOf(err), "error", err)
			continue
		}

		if err := d.Handle(ctx, msg); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				d.logger.Info("dispatcher stopped")
				return nil
			}
			d.logger.Warn("message dropped",
				"topic", string(msg.Topic),
				"type", string(msg.Type),
				"kind", fault.KindOf(err),
				"error", err,
			)
		}
	}
}

// Handle processes one message. A non-nil result is a *fault.Error and the
// message was dropped; a book may have been partially written.
func (d *Dispatcher) Handle(ctx context.Context, msg model.Message) error {
	start := time.Now()

	kind, rows, err := d.handle(ctx, msg)
	if err != nil && fault.KindOf(err) == fault.KindUnknown {
		err = fault.New(fault.KindUnknown, "handle", err)
	}

	d.record(msg.ReceivedAt, kind, rows, err, time.Since(start))
	if err == nil && kind == model.KindUnknown {
		d.logger.Debug("skipping message type", "type", string(msg.Type))
	}
	return err
}

// handle runs the pipeline stages and reports the kind and row count written.
func (d *Dispatcher) handle(ctx context.Context, msg model.Message) (model.Kind, int, error) {
	if !utf8.Valid(msg.Topic) {
		return model.KindUnknown, 0, fault.Decodef("decode topic", "topic is not valid UTF-8: %q", msg.Topic)
	}
	topic := string(msg.Topic)

	res, err := decode.Decode(msg.Type, msg.Payload)
	if err != nil {
		return model.KindUnknown, 0, err
	}

	switch res.Kind {
	case model.KindBook:
		if err := d.schema.EnsureTable(ctx, d.keyspace, topic, model.KindBook); err != nil {
			return res.Kind, 0, err
		}
		if err := d.writer.InsertBook(ctx, d.keyspace, topic, res.Books); err != nil {
			return res.Kind, 0, err
		}
		return res.Kind, len(res.Books), nil

	case model.KindTick:
		tick := res.Tick
		cum, err := d.state.Update(tick.Symbol, tick.TradeType, tick.Volume, tick.Time)
		if err != nil {
			return res.Kind, 0, err
		}
		if err := d.schema.EnsureTable(ctx, d.keyspace, topic, model.KindTick); err != nil {
			return res.Kind, 0, err
		}
		enriched := model.EnrichedTick{TickRecord: tick, Cumulative: cum}
		if err := d.writer.InsertTick(ctx, d.keyspace, topic, enriched); err != nil {
			return res.Kind, 0, err
		}
		d.logger.Debug("tick persisted",
			"topic", topic,
			"symbol", tick.Symbol,
			"cumbuy", cum.Buy,
			"cumsell", cum.Sell,
			"cumdelta", cum.Delta(),
		)
		return res.Kind, 1, nil

	default:
		return model.KindUnknown, 0, nil
	}
}

// State returns the aggregation state owned by the dispatcher.
func (d *Dispatcher) State() *aggregate.State {
	return d.state
}

// Stats returns current statistics.
func (d *Dispatcher) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// record updates stats and metrics for one message.
func (d *Dispatcher) record(at time.Time, kind model.Kind, rows int, err error, elapsed time.Duration) {
	result := outcome(kind, err)

	d.mu.Lock()
	d.stats.MessagesReceived++
	d.stats.LastMessageAt = at
	d.stats.RowsWritten += int64(rows)
	switch result {
	case metrics.OutcomePersisted:
		d.stats.MessagesPersisted++
	case metrics.OutcomeSkipped:
		d.stats.MessagesSkipped++
	case metrics.OutcomeDecodeError:
		d.stats.DecodeErrors++
	case metrics.OutcomeAggregationError:
		d.stats.AggregationErrors++
	case metrics.OutcomeStorageError:
		d.stats.StorageErrors++
	}
	d.mu.Unlock()

	d.metrics.ObserveMessage(result, elapsed)
	d.metrics.SetSymbols(d.state.Symbols())
}

func outcome(kind model.Kind, err error) string {
	if err == nil {
		if kind == model.KindUnknown {
			return metrics.OutcomeSkipped
		}
		return metrics.OutcomePersisted
	}
	switch fault.KindOf(err) {
	case fault.KindDecode:
		return metrics.OutcomeDecodeError
	case fault.KindAggregation:
		return metrics.OutcomeAggregationError
	default:
		return metrics.OutcomeStorageError
	}
}
