package session

import (
	"errors"
	"fmt"
)

var (
	// ErrHandshakeTimeout indicates the firmware never answered the handshake.
	ErrHandshakeTimeout = errors.New("handshake timeout")
	// ErrSessionDone indicates the session already ran.
	ErrSessionDone = errors.New("session already terminated")
)

// UnknownCommandError indicates the command is not in the registry.
type UnknownCommandError struct {
	Name string
}

// Error implements error.
func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// TransportError wraps a failure of the underlying transport.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}
