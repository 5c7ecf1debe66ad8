// Package dispatch runs the receive loop that turns subscribed messages into
// stored rows.
//
// Each message is processed in order:
//
//	receive → split frames → decode → aggregate (ticks) → ensure table → write
//
// Every stage returns a classified fault.Error. Decode, aggregation and
// storage errors drop the current message and the loop continues; only a
// transport error ends Run. Aggregation state is only touched after a
// successful decode.
package dispatch
