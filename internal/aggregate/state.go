package aggregate

import (
	"fmt"
	"sync"

	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/model"
)

// SecondsPerDay is the width of a day bucket.
const SecondsPerDay = 86400

// Representable event time range (unix seconds). MaxEventTime is
// 9999-12-31T23:59:59Z.
const (
	MinEventTime int64 = 0
	MaxEventTime int64 = 253402300799
)

// ResetPolicy selects how day-boundary resets are detected.
type ResetPolicy string

const (
	ResetGlobal    ResetPolicy = "global"
	ResetPerSymbol ResetPolicy = "per_symbol"
)

// ParseResetPolicy validates a policy name.
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch p := ResetPolicy(s); p {
	case ResetGlobal, ResetPerSymbol:
		return p, nil
	default:
		return "", fmt.Errorf("unknown day reset policy %q (want %q or %q)", s, ResetGlobal, ResetPerSymbol)
	}
}

// symbolState is the running state of one symbol.
type symbolState struct {
	cum     model.Cumulative
	lastDay int64 // Latest day bucket seen for the symbol (per-symbol policy)
}

// State holds the cumulative counters of every symbol seen so far and the
// process-wide last-processed event time. A single mutex guards both so the
// reset decision and the clock update are observed together.
type State struct {
	policy ResetPolicy

	mu            sync.Mutex
	symbols       map[string]*symbolState
	lastProcessed int64
	hasLast       bool
}

// NewState creates empty aggregation state. An empty policy means ResetPerSymbol.
func NewState(policy ResetPolicy) *State {
	if policy == "" {
		policy = ResetPerSymbol
	}
	return &State{
		policy:  policy,
		symbols: make(map[string]*symbolState),
	}
}

// Policy returns the reset policy in effect.
func (s *State) Policy() ResetPolicy {
	return s.policy
}

// Update applies one tick and returns the symbol's counters after it.
// Trade types other than "B" and "S" leave the counters unchanged but still
// advance the clock and may trigger a reset.
func (s *State) Update(symbol, tradeType string, volume, eventTime int64) (model.Cumulative, error) {
	if eventTime < MinEventTime || eventTime > MaxEventTime {
		return model.Cumulative{}, fault.Aggregation("update",
			fmt.Errorf("event time %d outside [%d, %d]", eventTime, MinEventTime, MaxEventTime))
	}

	eventDay := eventTime / SecondsPerDay

	s.mu.Lock()
	defer s.mu.Unlock()

	st, seen := s.symbols[symbol]

	var reset bool
	switch s.policy {
	case ResetGlobal:
		reset = s.hasLast && eventDay > s.lastProcessed/SecondsPerDay
	default:
		reset = seen && eventDay > st.lastDay
	}

	s.lastProcessed = eventTime
	s.hasLast = true

	if !seen {
		st = &symbolState{}
		s.symbols[symbol] = st
	}
	if reset {
		st.cum = model.Cumulative{}
	}
	if !seen || eventDay > st.lastDay {
		st.lastDay = eventDay
	}

	switch tradeType {
	case model.TradeBuy:
		st.cum.Buy += volume
	case model.TradeSell:
		st.cum.Sell += volume
	}

	return st.cum, nil
}

// Snapshot returns the counters for symbol and whether it has been seen.
func (s *State) Snapshot(symbol string) (model.Cumulative, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.symbols[symbol]
	if !ok {
		return model.Cumulative{}, false
	}
	return st.cum, true
}

// LastProcessed returns the last processed event time, if any tick was seen.
func (s *State) LastProcessed() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProcessed, s.hasLast
}

// Symbols returns the number of symbols being tracked.
func (s *State) Symbols() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.symbols)
}
