// Package transport provides byte-stream transports to the firmware.
package transport

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrClosed indicates the transport is closed.
	ErrClosed = errors.New("transport closed")
	// ErrNoPorts indicates no serial port is discovered.
	ErrNoPorts = errors.New("no serial port")
	// ErrPortNotFound indicates the requested serial port is not discovered.
	ErrPortNotFound = errors.New("serial port not found")
)

// DefaultBaud is the baud rate used by the firmware.
const DefaultBaud = 115200

// Transport is a line oriented byte stream to the firmware.
type Transport interface {
	// Write blocks until all bytes are written.
	io.Writer
	// Buffered returns the count of received bytes not read yet.
	// It never blocks. A read failure is reported once all received
	// bytes are consumed.
	Buffered() (int, error)
	// ReadLine reads until '\n' and returns the line including the terminator.
	ReadLine(ctx context.Context) (string, error)
	// Close is idempotent.
	io.Closer
}
