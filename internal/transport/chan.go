package transport

import (
	"context"
	"sync"
	"time"

	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/model"
)

// delivery is one queued Receive result.
type delivery struct {
	frames [][]byte
	err    error
}

// ChanSubscriber is an in-process Subscriber fed by Publish.
type ChanSubscriber struct {
	ch   chan delivery
	done chan struct{}

	closeOnce sync.Once
	now       func() time.Time
}

// NewChanSubscriber creates a ChanSubscriber with the given queue size.
func NewChanSubscriber(size int) *ChanSubscriber {
	return &ChanSubscriber{
		ch:   make(chan delivery, size),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

// Publish queues a [topic, type, payload] message.
func (s *ChanSubscriber) Publish(topic, typ string, payload []byte) {
	s.PublishFrames([]byte(topic), []byte(typ), payload)
}

// PublishFrames queues a raw frame set, which may have any number of frames.
func (s *ChanSubscriber) PublishFrames(frames ...[]byte) {
	s.ch <- delivery{frames: frames}
}

// Fail queues a channel failure. Receive returns it as a transport error.
func (s *ChanSubscriber) Fail(err error) {
	s.ch <- delivery{err: err}
}

// Receive returns the next queued message.
func (s *ChanSubscriber) Receive(ctx context.Context) (model.Message, error) {
	select {
	case <-ctx.Done():
		return model.Message{}, ctx.Err()
	case d := <-s.ch:
		if d.err != nil {
			return model.Message{}, fault.Transport("receive", d.err)
		}
		return FromFrames(d.frames, s.now())
	case <-s.done:
		return model.Message{}, fault.Transport("receive", ErrClosed)
	}
}

// Close stops delivery. Queued messages are discarded.
func (s *ChanSubscriber) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
