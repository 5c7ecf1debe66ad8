// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Messages handled, by outcome
//   - Rows written and write errors, by record kind
//   - Table provisioning requests, by kind and result
//   - Per-message handling latency
//   - Number of symbols with aggregation state
//
// All methods are safe on a nil *Pipeline, so components can run without
// metrics in tests.
package metrics
