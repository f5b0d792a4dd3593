package rcon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"plugmerge/internal/trace"
)

// DefaultPollInterval bounds how long the receive loop waits for a frame
// before it loops again.
const DefaultPollInterval = 5 * time.Second

// Handler receives decoded server messages in arrival order.
type Handler interface {
	HandleMessage(Message)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Message)

func (f HandlerFunc) HandleMessage(m Message) { f(m) }

// Options tune a session.
type Options struct {
	PollInterval     time.Duration
	HandshakeTimeout time.Duration
	Tracer           trace.Tracer
}

// Session is one open WebRcon connection. Send may be called from any
// goroutine; Run must be called at most once.
type Session struct {
	conn     *websocket.Conn
	endpoint Endpoint
	poll     time.Duration
	tracer   trace.Tracer

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Dial opens the WebSocket. A failure is returned wrapped in
// ErrConnectionFailure and is never retried.
func Dial(ctx context.Context, ep Endpoint, opts Options) (*Session, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
	}
	span := trace.Begin(opts.Tracer, trace.ScopeStage, "rcon.dial", 0)
	conn, resp, err := dialer.DialContext(ctx, ep.URL(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		span.WithExtra("endpoint", ep.Redacted()).End("failed")
		if resp != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrConnectionFailure, ep.Redacted(), resp.Status)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailure, ep.Redacted(), err)
	}
	span.WithExtra("endpoint", ep.Redacted()).End("")

	return &Session{
		conn:     conn,
		endpoint: ep,
		poll:     opts.PollInterval,
		tracer:   opts.Tracer,
	}, nil
}

// Endpoint returns the endpoint the session was dialled with.
func (s *Session) Endpoint() Endpoint { return s.endpoint }

// Send writes one command frame. It does not wait for a reply.
func (s *Session) Send(command string) error {
	data, err := Encode(Command(command))
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("rcon: send %q: %w", command, err)
	}
	trace.Point(s.tracer, trace.ScopeFrame, "rcon.send", command)
	return nil
}

type frame struct {
	data []byte
	err  error
}

// Run receives frames until ctx is cancelled or the connection fails.
// Empty frames are skipped. A frame that does not decode ends the loop
// with ErrMalformedMessage. Run closes the connection before returning
// and reports nil when the stop came from ctx.
func (s *Session) Run(ctx context.Context, h Handler) error {
	frames := make(chan frame)
	done := make(chan struct{})
	defer close(done)
	defer s.Close()

	go s.readFrames(frames, done)

	timer := time.NewTimer(s.poll)
	defer timer.Stop()

	for {
		timer.Reset(s.poll)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			trace.Point(s.tracer, trace.ScopeFrame, "rcon.poll", "idle")
		case f := <-frames:
			if f.err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if websocket.IsCloseError(f.err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return fmt.Errorf("%w: server closed the connection", ErrConnectionLost)
				}
				return fmt.Errorf("%w: %w", ErrConnectionLost, f.err)
			}
			if len(bytes.TrimSpace(f.data)) == 0 {
				continue
			}
			msg, err := Decode(f.data)
			if err != nil {
				trace.Error(s.tracer, trace.ScopeFrame, "rcon.decode", err)
				return err
			}
			h.HandleMessage(msg)
		}
	}
}

func (s *Session) readFrames(out chan<- frame, done <-chan struct{}) {
	for {
		_, data, err := s.conn.ReadMessage()
		select {
		case out <- frame{data: data, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// Close sends a close frame and releases the connection. It is safe to
// call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.writeMu.Unlock()
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.closeErr = err
		}
	})
	return s.closeErr
}
