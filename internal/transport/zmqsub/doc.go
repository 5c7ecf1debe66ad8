// Package zmqsub implements transport.Subscriber over a ZeroMQ SUB socket
// authenticated with CURVE.
//
// The socket connects to the publisher, subscribes to each configured topic
// prefix, and polls with a bounded timeout so Receive observes context
// cancellation. Requires libzmq built with CURVE support.
package zmqsub
