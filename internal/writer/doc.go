// Package writer upserts decoded records into per-topic Cassandra tables.
//
// Writers:
//   - Book writer: one row per order book level, <topic>_book
//   - Tick writer: one row per trade with cumulative volume, <topic>_tick
//
// Rows are keyed by (symbol, time, price), so replays overwrite rather than
// duplicate. A book snapshot is written level by level with no batch
// atomicity; the first failed level stops the write.
package writer
