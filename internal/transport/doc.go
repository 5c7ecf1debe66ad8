// Package transport delivers framed market-data messages to the dispatcher.
//
// A Subscriber yields one model.Message per received [topic, type, payload]
// frame set. Receive blocks until a message arrives, the context is done, or
// the channel fails. Failures of the channel itself are classified as
// fault.KindTransport and end the receive loop; a malformed frame set is a
// decode error and only drops that message.
//
// Implementations:
//   - zmqsub.Subscriber: ZeroMQ SUB socket with CURVE client auth
//   - ChanSubscriber: in-process channel, for tests and replays
package transport
