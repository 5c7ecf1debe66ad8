package transport

import (
	"context"
	"errors"
	"time"

	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/model"
)

// Errors
var (
	ErrClosed = errors.New("subscriber closed")
)

// FrameCount is the number of frames in one message.
const FrameCount = 3

// Subscriber is a source of framed messages.
type Subscriber interface {
	// Receive blocks for the next message. It returns ctx.Err() once ctx is
	// done and a fault.KindTransport error if the channel fails.
	Receive(ctx context.Context) (model.Message, error)

	// Close releases the channel. Receive must not be running.
	Close() error
}

// FromFrames builds a Message from a received frame set.
func FromFrames(frames [][]byte, receivedAt time.Time) (model.Message, error) {
	if len(frames) != FrameCount {
		return model.Message{}, fault.Decodef("split frames", "expected %d frames, got %d", FrameCount, len(frames))
	}
	return model.Message{
		Topic:      frames[0],
		Type:       frames[1],
		Payload:    frames[2],
		ReceivedAt: receivedAt,
	}, nil
}
