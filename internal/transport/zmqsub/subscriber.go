package zmqsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/rickgao/tickstore/internal/config"
	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/model"
	"github.com/rickgao/tickstore/internal/transport"
)

// ErrNoCurve is returned when libzmq was built without CURVE.
var ErrNoCurve = errors.New("libzmq has no CURVE support")

// Subscriber receives messages from a CURVE-secured SUB socket.
type Subscriber struct {
	cfg    config.TransportConfig
	logger *slog.Logger

	zctx   *zmq.Context
	socket *zmq.Socket
	poller *zmq.Poller

	mu     sync.Mutex
	closed bool
}

var _ transport.Subscriber = (*Subscriber)(nil)

// Dial creates the socket, configures CURVE client auth, connects and
// subscribes to every topic in cfg.
func Dial(cfg config.TransportConfig, logger *slog.Logger) (*Subscriber, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !zmq.HasCurve() {
		return nil, fault.Transport("dial", ErrNoCurve)
	}

	zctx, err := zmq.NewContext()
	if err != nil {
		return nil, fault.Transport("new context", err)
	}

	socket, err := zctx.NewSocket(zmq.SUB)
	if err != nil {
		zctx.Term()
		return nil, fault.Transport("new socket", err)
	}

	s := &Subscriber{
		cfg:    cfg,
		logger: logger,
		zctx:   zctx,
		socket: socket,
	}
	if err := s.setup(); err != nil {
		s.Close()
		return nil, err
	}

	s.poller = zmq.NewPoller()
	s.poller.Add(socket, zmq.POLLIN)

	logger.Info("subscriber connected",
		"address", cfg.Address,
		"topics", cfg.Topics,
	)
	return s, nil
}

func (s *Subscriber) setup() error {
	if err := s.socket.SetLinger(0); err != nil {
		return fault.Transport("set linger", err)
	}
	if s.cfg.ReceiveHWM > 0 {
		if err := s.socket.SetRcvhwm(s.cfg.ReceiveHWM); err != nil {
			return fault.Transport("set receive hwm", err)
		}
	}
	if err := s.socket.ClientAuthCurve(s.cfg.ServerKey, s.cfg.PublicKey, s.cfg.SecretKey); err != nil {
		return fault.Transport("curve auth", err)
	}
	if err := s.socket.Connect(s.cfg.Address); err != nil {
		return fault.Transport("connect "+s.cfg.Address, err)
	}
	for _, topic := range s.cfg.Topics {
		if err := s.socket.SetSubscribe(topic); err != nil {
			return fault.Transport(fmt.Sprintf("subscribe %q", topic), err)
		}
	}
	return nil
}

// Receive polls until a frame set arrives or ctx is done.
func (s *Subscriber) Receive(ctx context.Context) (model.Message, error) {
	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}

	for {
		if err := ctx.Err(); err != nil {
			return model.Message{}, err
		}
		if s.isClosed() {
			return model.Message{}, fault.Transport("receive", transport.ErrClosed)
		}

		polled, err := s.poller.Poll(interval)
		if err != nil {
			if interrupted(err) {
				continue
			}
			return model.Message{}, fault.Transport("poll", err)
		}
		if len(polled) == 0 {
			continue
		}

		frames, err := s.socket.RecvMessageBytes(0)
		if err != nil {
			if interrupted(err) {
				continue
			}
			return model.Message{}, fault.Transport("receive", err)
		}
		return transport.FromFrames(frames, time.Now())
	}
}

// Close closes the socket and terminates the context.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	if s.socket != nil {
		errs = append(errs, s.socket.Close())
	}
	if s.zctx != nil {
		errs = append(errs, s.zctx.Term())
	}
	return errors.Join(errs...)
}

func (s *Subscriber) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func interrupted(err error) bool {
	return zmq.AsErrno(err) == zmq.Errno(syscall.EINTR)
}
