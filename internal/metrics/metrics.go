package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rickgao/tickstore/internal/model"
)

const namespace = "tickstore"

// Message outcomes.
const (
	OutcomePersisted        = "persisted"
	OutcomeSkipped          = "skipped"
	OutcomeDecodeError      = "decode_error"
	OutcomeAggregationError = "aggregation_error"
	OutcomeStorageError     = "storage_error"
)

// Pipeline holds the ingestion pipeline collectors.
type Pipeline struct {
	Messages      *prometheus.CounterVec
	Rows          *prometheus.CounterVec
	WriteErrors   *prometheus.CounterVec
	Provisions    *prometheus.CounterVec
	HandleLatency prometheus.Histogram
	Symbols       prometheus.Gauge
}

// New creates the collectors and registers them with reg (skipped when reg is nil).
func New(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Messages handled by the dispatcher, by outcome",
			},
			[]string{"outcome"},
		),
		Rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_written_total",
				Help:      "Rows upserted into storage, by record kind",
			},
			[]string{"kind"},
		),
		WriteErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "write_errors_total",
				Help:      "Failed upserts, by record kind",
			},
			[]string{"kind"},
		),
		Provisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "table_provision_requests_total",
				Help:      "CREATE TABLE IF NOT EXISTS requests issued, by kind and result",
			},
			[]string{"kind", "result"},
		),
		HandleLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_handle_seconds",
				Help:      "Time to decode, aggregate and persist one message",
				Buckets:   prometheus.DefBuckets,
			},
		),
		Symbols: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tracked_symbols",
				Help:      "Symbols with cumulative volume state",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(p.Messages, p.Rows, p.WriteErrors, p.Provisions, p.HandleLatency, p.Symbols)
	}
	return p
}

// ObserveMessage records one handled message.
func (p *Pipeline) ObserveMessage(outcome string, d time.Duration) {
	if p == nil {
		return
	}
	p.Messages.WithLabelValues(outcome).Inc()
	p.HandleLatency.Observe(d.Seconds())
}

// AddRows records n rows written for kind.
func (p *Pipeline) AddRows(kind model.Kind, n int) {
	if p == nil || n == 0 {
		return
	}
	p.Rows.WithLabelValues(kind.String()).Add(float64(n))
}

// WriteError records a failed upsert for kind.
func (p *Pipeline) WriteError(kind model.Kind) {
	if p == nil {
		return
	}
	p.WriteErrors.WithLabelValues(kind.String()).Inc()
}

// Provision records a provisioning request and its result.
func (p *Pipeline) Provision(kind model.Kind, err error) {
	if p == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.Provisions.WithLabelValues(kind.String(), result).Inc()
}

// SetSymbols sets the tracked symbol gauge.
func (p *Pipeline) SetSymbols(n int) {
	if p == nil {
		return
	}
	p.Symbols.Set(float64(n))
}
