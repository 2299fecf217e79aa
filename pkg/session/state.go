package session

import (
	"context"

	"github.com/golang/glog"
	"github.com/looplab/fsm"
)

// State is the state of a session.
type State string

// Session states.
const (
	StateIdle        State = "idle"
	StateHandshaking State = "handshaking"
	StateReady       State = "ready"
	StateDispatched  State = "dispatched"
	StateTerminated  State = "terminated"
)

const (
	eventStart     = "start"
	eventReady     = "ready"
	eventDispatch  = "dispatch"
	eventTerminate = "terminate"
)

func newStateMachine(s *Session) *fsm.FSM {
	return fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: eventStart, Src: []string{string(StateIdle)}, Dst: string(StateHandshaking)},
			{Name: eventReady, Src: []string{string(StateHandshaking)}, Dst: string(StateReady)},
			{Name: eventDispatch, Src: []string{string(StateReady)}, Dst: string(StateDispatched)},
			{Name: eventTerminate, Src: []string{
				string(StateIdle),
				string(StateHandshaking),
				string(StateReady),
				string(StateDispatched),
			}, Dst: string(StateTerminated)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				glog.V(2).Infof("session %s: %s -> %s", s.Endpoint, e.Src, e.Dst)
			},
		},
	)
}

// Reason tells why a session terminated.
type Reason int

// Termination reasons.
const (
	ReasonNone Reason = iota
	ReasonFinished
	ReasonCanceled
	ReasonUnknownCommand
	ReasonTransportError
	ReasonEncodingError
	ReasonHandshakeTimeout
	ReasonCommandError
)

var reasonNames = map[Reason]string{
	ReasonNone:             "",
	ReasonFinished:         "finished",
	ReasonCanceled:         "canceled",
	ReasonUnknownCommand:   "unknown-command",
	ReasonTransportError:   "transport-error",
	ReasonEncodingError:    "encoding-error",
	ReasonHandshakeTimeout: "handshake-timeout",
	ReasonCommandError:     "command-error",
}

// String implements fmt.Stringer.
func (r Reason) String() string {
	return reasonNames[r]
}

// IsClean indicates the session ended without a fault.
func (r Reason) IsClean() bool {
	return r == ReasonFinished || r == ReasonCanceled
}
