// Package session implements the host side of the serial command protocol.
//
// A session polls the firmware with request frames until it answers with
// the ready sentinel, dispatches exactly one command, and keeps reporting
// status lines until the firmware finishes or the session is canceled.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/looplab/fsm"

	fx "github.com/robotalks/serialcmd/pkg/framework"
	"github.com/robotalks/serialcmd/pkg/proto"
	"github.com/robotalks/serialcmd/pkg/transport"
)

// Config defines the handshake and polling policy.
type Config struct {
	// MaxRequests caps the handshake requests sent. Once reached the
	// session keeps listening for a late ready sentinel.
	MaxRequests int
	// RequestInterval is the pause after each handshake request.
	RequestInterval time.Duration
	// StatusInterval is the pause after each status line and between
	// idle drain passes.
	StatusInterval time.Duration
	// HandshakeTimeout terminates a session not answered within it.
	// 0 listens forever.
	HandshakeTimeout time.Duration
}

// DefaultConfig returns the policy used by the reference firmware host.
func DefaultConfig() Config {
	return Config{
		MaxRequests:     3,
		RequestInterval: time.Second,
		StatusInterval:  100 * time.Millisecond,
	}
}

var errFinished = errors.New("finished")

// Session owns one connection to the firmware. It runs once.
type Session struct {
	Config

	Endpoint  string
	Transport transport.Transport
	Registry  *Registry
	Reporter  Reporter
	Clock     fx.Clock

	Command string
	Args    []string

	state        *fsm.FSM
	responded    bool
	requestsSent int
	startedAt    time.Time
	reason       Reason
}

// New creates a Session which dispatches command with args.
func New(t transport.Transport, reg *Registry, command string, args ...string) *Session {
	s := &Session{
		Config:    DefaultConfig(),
		Transport: t,
		Registry:  reg,
		Clock:     fx.SystemClock,
		Command:   command,
		Args:      args,
	}
	s.state = newStateMachine(s)
	return s
}

// WithConfig sets the policy.
func (s *Session) WithConfig(conf Config) *Session {
	s.Config = conf
	return s
}

// WithEndpoint sets the endpoint name used in events.
func (s *Session) WithEndpoint(endpoint string) *Session {
	s.Endpoint = endpoint
	return s
}

// WithReporter sets the Reporter.
func (s *Session) WithReporter(r Reporter) *Session {
	s.Reporter = r
	return s
}

// WithClock sets the Clock.
func (s *Session) WithClock(c fx.Clock) *Session {
	s.Clock = c
	return s
}

// Name implements Named.
func (s *Session) Name() string {
	return s.Endpoint
}

// Now returns the session time, used by handlers.
func (s *Session) Now() time.Time {
	return s.Clock.Time()
}

// State gets the current state.
func (s *Session) State() State {
	return State(s.state.Current())
}

// Responded indicates the firmware answered the handshake.
func (s *Session) Responded() bool {
	return s.responded
}

// RequestsSent returns handshake requests sent so far.
func (s *Session) RequestsSent() int {
	return s.requestsSent
}

// Reason tells why the session terminated.
func (s *Session) Reason() Reason {
	return s.reason
}

// Run implements Runnable. It returns nil when the firmware finishes,
// ctx.Err() when canceled. The transport is closed on return.
func (s *Session) Run(ctx context.Context) (err error) {
	if s.State() != StateIdle {
		return ErrSessionDone
	}
	s.fire(eventStart)
	s.startedAt = s.Clock.Time()
	defer func() {
		err = s.terminate(err)
	}()

	for {
		if err = s.drain(ctx); err != nil {
			return
		}
		if s.State() == StateHandshaking {
			err = s.handshake(ctx)
		} else {
			err = s.Clock.Sleep(ctx, s.StatusInterval)
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) drain(ctx context.Context) error {
	for {
		n, err := s.Transport.Buffered()
		if err != nil {
			return &TransportError{Op: "read", Err: err}
		}
		if n == 0 {
			return nil
		}
		raw, err := s.Transport.ReadLine(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &TransportError{Op: "read", Err: err}
		}
		line := proto.ClassifyLine(raw)
		glog.V(3).Infof("RCV %q", line.Text)

		var kind EventKind
		switch line.Kind {
		case proto.StatusResponseReady:
			if s.responded {
				// the latch is set, nothing changes.
				continue
			}
			s.responded = true
			s.report(Event{Kind: EventReady})
			return nil
		case proto.StatusFinish:
			return errFinished
		case proto.StatusSuccess:
			kind = EventSuccess
		case proto.StatusFail:
			kind = EventFail
		default:
			kind = EventOutput
		}
		s.report(Event{Kind: kind, Text: line.Text})
		if err := s.Clock.Sleep(ctx, s.StatusInterval); err != nil {
			return err
		}
	}
}

func (s *Session) handshake(ctx context.Context) error {
	if s.responded {
		return s.dispatch()
	}
	if s.HandshakeTimeout > 0 && s.Clock.Time().Sub(s.startedAt) >= s.HandshakeTimeout {
		return ErrHandshakeTimeout
	}
	if s.requestsSent < s.MaxRequests {
		if err := s.send(proto.RequestFrame()); err != nil {
			return err
		}
		s.requestsSent++
		s.report(Event{Kind: EventRequest, Seq: s.requestsSent})
		return s.Clock.Sleep(ctx, s.RequestInterval)
	}
	return s.Clock.Sleep(ctx, s.StatusInterval)
}

func (s *Session) dispatch() error {
	s.fire(eventReady)
	h, ok := s.Registry.Lookup(s.Command)
	if !ok {
		return &UnknownCommandError{Name: s.Command}
	}
	frame, err := h.Frame(s, s.Args...)
	if err != nil {
		return fmt.Errorf("command %s: %w", s.Command, err)
	}
	if err = s.send(frame); err != nil {
		return err
	}
	s.fire(eventDispatch)
	s.report(Event{Kind: EventDispatch, Text: frame.String()})
	return nil
}

func (s *Session) send(f proto.Frame) error {
	b, err := f.Bytes()
	if err != nil {
		return err
	}
	glog.V(3).Infof("SND %q", b)
	if _, err = s.Transport.Write(b); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

func (s *Session) terminate(err error) error {
	s.fire(eventTerminate)
	if closeErr := s.Transport.Close(); closeErr != nil {
		glog.Warningf("session %s: close transport error: %v", s.Endpoint, closeErr)
	}
	s.responded, s.requestsSent = false, 0
	s.reason = reasonOf(err)
	if err == errFinished {
		err = nil
	}
	s.report(Event{Kind: EventTerminated, Reason: s.reason, Err: err})
	return err
}

func (s *Session) fire(event string) {
	if err := s.state.Event(context.Background(), event); err != nil {
		glog.Errorf("session %s: %s: %v", s.Endpoint, event, err)
	}
}

func (s *Session) report(ev Event) {
	if s.Reporter == nil {
		return
	}
	ev.Time = s.Clock.Time()
	ev.Endpoint, ev.Command = s.Endpoint, s.Command
	s.Reporter.Report(context.Background(), ev)
}

func reasonOf(err error) Reason {
	var unknownErr *UnknownCommandError
	var transportErr *TransportError
	var encodingErr *proto.EncodingError
	switch {
	case err == nil, err == errFinished:
		return ReasonFinished
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.As(err, &unknownErr):
		return ReasonUnknownCommand
	case errors.As(err, &transportErr):
		return ReasonTransportError
	case errors.As(err, &encodingErr):
		return ReasonEncodingError
	case err == ErrHandshakeTimeout:
		return ReasonHandshakeTimeout
	}
	return ReasonCommandError
}
