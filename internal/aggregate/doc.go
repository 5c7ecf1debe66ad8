// Package aggregate maintains running per-symbol buy/sell volume for ticks.
//
// Counters reset at UTC day boundaries (unix seconds / 86400). Two reset
// policies are available:
//   - ResetGlobal: a tick resets its symbol when its day is later than the day
//     of the last tick processed for any symbol.
//   - ResetPerSymbol: a tick resets its symbol when its day is later than the
//     day of that symbol's own previous tick.
//
// State is in-memory only; a restart starts every symbol from zero.
package aggregate
