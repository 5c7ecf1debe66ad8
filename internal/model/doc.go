// Package model defines shared data types used across the ingestion pipeline.
//
// Conventions:
//   - Prices: float64, as published by the feed
//   - Timestamps: int64 seconds since Unix epoch (UTC)
//   - Volumes and cumulative counters: int64
//   - Topics: feed identifiers, also used as storage table name prefixes
package model
