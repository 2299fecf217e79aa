package session

import (
	"context"
	"time"

	"github.com/robotalks/serialcmd/pkg/transport"
)

type fakeTransport struct {
	inbound  []string
	writes   []string
	closed   int
	writeErr error
	readErr  error
	onWrite  func(t *fakeTransport, frame string)
}

func (t *fakeTransport) inject(lines ...string) {
	t.inbound = append(t.inbound, lines...)
}

func (t *fakeTransport) Write(p []byte) (int, error) {
	if t.closed > 0 {
		return 0, transport.ErrClosed
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	frame := string(p)
	t.writes = append(t.writes, frame)
	if t.onWrite != nil {
		t.onWrite(t, frame)
	}
	return len(p), nil
}

func (t *fakeTransport) Buffered() (int, error) {
	if t.closed > 0 {
		return 0, transport.ErrClosed
	}
	if len(t.inbound) > 0 {
		return len(t.inbound[0]), nil
	}
	return 0, t.readErr
}

func (t *fakeTransport) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(t.inbound) == 0 {
		return "", t.readErr
	}
	line := t.inbound[0]
	t.inbound = t.inbound[1:]
	return line, nil
}

func (t *fakeTransport) Close() error {
	t.closed++
	return nil
}

func (t *fakeTransport) requests() int {
	var n int
	for _, w := range t.writes {
		if w == "__REQUEST__;" {
			n++
		}
	}
	return n
}

type fakeClock struct {
	now     time.Time
	sleeps  []time.Duration
	limit   int
	cancel  context.CancelFunc
	onSleep func(n int)
}

func newFakeClock(cancel context.CancelFunc, limit int) *fakeClock {
	return &fakeClock{
		now:    time.Unix(1700000000, 0),
		limit:  limit,
		cancel: cancel,
	}
}

func (c *fakeClock) Time() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep(len(c.sleeps))
	}
	if c.limit > 0 && len(c.sleeps) >= c.limit && c.cancel != nil {
		c.cancel()
	}
	return ctx.Err()
}

type eventRecorder struct {
	events []Event
	states []State
	sess   *Session
}

func (r *eventRecorder) Report(ctx context.Context, ev Event) {
	r.events = append(r.events, ev)
	if r.sess != nil {
		r.states = append(r.states, r.sess.State())
	}
}

func (r *eventRecorder) kinds() []EventKind {
	kinds := make([]EventKind, len(r.events))
	for n, ev := range r.events {
		kinds[n] = ev.Kind
	}
	return kinds
}

func (r *eventRecorder) count(kind EventKind) int {
	var n int
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

type sessionTestEnv struct {
	ctx       context.Context
	cancel    context.CancelFunc
	transport *fakeTransport
	clock     *fakeClock
	recorder  *eventRecorder
	session   *Session
}

func newSessionTestEnv(maxRequests, sleepLimit int, reg *Registry, command string, args ...string) *sessionTestEnv {
	env := &sessionTestEnv{transport: &fakeTransport{}, recorder: &eventRecorder{}}
	env.ctx, env.cancel = context.WithCancel(context.Background())
	env.clock = newFakeClock(env.cancel, sleepLimit)
	conf := DefaultConfig()
	conf.MaxRequests = maxRequests
	env.session = New(env.transport, reg, command, args...).
		WithConfig(conf).
		WithEndpoint("test").
		WithClock(env.clock).
		WithReporter(env.recorder)
	env.recorder.sess = env.session
	return env
}

func (e *sessionTestEnv) run() error {
	defer e.cancel()
	return e.session.Run(e.ctx)
}
