// Package fault classifies pipeline errors.
//
// Kinds:
//   - Transport: the subscription channel is broken (fatal, the process exits)
//   - Decode: the message or payload is malformed (drop, continue)
//   - Aggregation: the tick cannot be aggregated (drop, continue)
//   - Storage: provisioning or a write failed (drop, continue)
//
// Only transport errors escape the dispatcher loop.
package fault
