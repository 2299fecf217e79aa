package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
)

// EventKind is the kind of session event.
type EventKind int

// Event kinds.
const (
	// EventRequest is emitted after a handshake request is sent.
	EventRequest EventKind = iota
	// EventReady is emitted when the firmware answers the handshake.
	EventReady
	// EventDispatch is emitted after the command frame is sent.
	EventDispatch
	// EventSuccess is emitted when the firmware reports success.
	EventSuccess
	// EventFail is emitted when the firmware reports failure.
	EventFail
	// EventOutput carries a line which is not a sentinel.
	EventOutput
	// EventTerminated is always the last event of a session.
	EventTerminated
)

var eventKindNames = map[EventKind]string{
	EventRequest:    "request",
	EventReady:      "ready",
	EventDispatch:   "dispatch",
	EventSuccess:    "success",
	EventFail:       "fail",
	EventOutput:     "output",
	EventTerminated: "terminated",
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a session progress notification.
type Event struct {
	Kind     EventKind
	Time     time.Time
	Endpoint string
	Command  string
	// Seq is the request number of EventRequest.
	Seq int
	// Text is the raw line of EventOutput or the frame of EventDispatch.
	Text   string
	Reason Reason
	Err    error
}

// Reporter receives session events.
type Reporter interface {
	Report(context.Context, Event)
}

// ReportFunc is func type of Reporter.
type ReportFunc func(context.Context, Event)

// Report implements Reporter.
func (f ReportFunc) Report(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// ReporterMux dispatches events to multiple Reporters in order.
type ReporterMux struct {
	Reporters []Reporter
}

// Report implements Reporter.
func (m *ReporterMux) Report(ctx context.Context, ev Event) {
	for _, r := range m.Reporters {
		r.Report(ctx, ev)
	}
}

// Add adds more reporters. nil will be skipped.
func (m *ReporterMux) Add(reporters ...Reporter) *ReporterMux {
	for _, r := range reporters {
		if r != nil {
			m.Reporters = append(m.Reporters, r)
		}
	}
	return m
}

// ConsoleReporter prints events for the operator.
type ConsoleReporter struct {
	W io.Writer

	waiting bool
}

// NewConsoleReporter creates a ConsoleReporter.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{W: w}
}

// Report implements Reporter.
func (r *ConsoleReporter) Report(ctx context.Context, ev Event) {
	if ev.Kind == EventRequest {
		// rewrite the same line for each request.
		fmt.Fprintf(r.W, "Waiting for response... %d\r", ev.Seq)
		r.waiting = true
		return
	}
	if r.waiting {
		fmt.Fprintln(r.W)
		r.waiting = false
	}
	switch ev.Kind {
	case EventReady:
		fmt.Fprintln(r.W, "Device ready")
	case EventDispatch:
		fmt.Fprintf(r.W, "Sending %s\n", ev.Text)
	case EventSuccess:
		fmt.Fprintln(r.W, "Command succeeded")
	case EventFail:
		fmt.Fprintln(r.W, "Command failed")
	case EventOutput:
		fmt.Fprintf(r.W, "> %q\n", ev.Text)
	case EventTerminated:
		switch ev.Reason {
		case ReasonFinished:
			fmt.Fprintln(r.W, "Finished")
		case ReasonCanceled:
			fmt.Fprintln(r.W, "Canceled")
		case ReasonUnknownCommand:
			fmt.Fprintf(r.W, "Unknown command %q\n", ev.Command)
		default:
			fmt.Fprintf(r.W, "Terminated (%s): %v\n", ev.Reason, ev.Err)
		}
	}
}

// LogReporter logs events using glog.
type LogReporter struct{}

// Report implements Reporter.
func (LogReporter) Report(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventTerminated:
		if ev.Reason.IsClean() {
			glog.Infof("session %s: terminated (%s)", ev.Endpoint, ev.Reason)
		} else {
			glog.Errorf("session %s: terminated (%s): %v", ev.Endpoint, ev.Reason, ev.Err)
		}
	case EventFail:
		glog.Warningf("session %s: command %s failed", ev.Endpoint, ev.Command)
	default:
		if glog.V(1) {
			glog.Infof("session %s: %s seq=%d %q", ev.Endpoint, ev.Kind, ev.Seq, ev.Text)
		}
	}
}
