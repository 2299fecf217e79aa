package transport

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
)

const readChunkSize = 256

// Stream adapts a blocking io.ReadWriteCloser into a Transport.
// A single background goroutine reads into an ordered buffer.
type Stream struct {
	rwc io.ReadWriteCloser
	// set to true if rwc returns timeouts or empty reads while idle.
	readTimeout bool

	lock     sync.Mutex
	buf      []byte
	err      error
	notifyCh chan struct{}

	closeOnce sync.Once
	closeErr  error
	closedCh  chan struct{}
}

// NewStream wraps rwc and starts reading.
func NewStream(rwc io.ReadWriteCloser) *Stream {
	return newStream(rwc, false)
}

// NewStreamWithReadTimeout wraps rwc that supports read timeout.
// Empty reads, timeouts and io.EOF are treated as idle until closed.
func NewStreamWithReadTimeout(rwc io.ReadWriteCloser) *Stream {
	return newStream(rwc, true)
}

func newStream(rwc io.ReadWriteCloser, readTimeout bool) *Stream {
	s := &Stream{
		rwc:         rwc,
		readTimeout: readTimeout,
		notifyCh:    make(chan struct{}, 1),
		closedCh:    make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Stream) readLoop() {
	chunk := make([]byte, readChunkSize)
	for {
		n, err := s.rwc.Read(chunk)
		if s.readTimeout && err != nil && (err == io.EOF || os.IsTimeout(err)) {
			err = nil
		}
		select {
		case <-s.closedCh:
			err = ErrClosed
		default:
		}
		if n == 0 && err == nil {
			continue
		}
		s.lock.Lock()
		s.buf = append(s.buf, chunk[:n]...)
		if err != nil {
			s.err = err
		}
		s.lock.Unlock()
		s.notify()
		if err != nil {
			return
		}
	}
}

func (s *Stream) notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Write implements Transport.
func (s *Stream) Write(p []byte) (int, error) {
	select {
	case <-s.closedCh:
		return 0, ErrClosed
	default:
	}
	return s.rwc.Write(p)
}

// Buffered implements Transport.
func (s *Stream) Buffered() (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.buf) == 0 {
		return 0, s.err
	}
	return len(s.buf), nil
}

// ReadLine implements Transport.
func (s *Stream) ReadLine(ctx context.Context) (string, error) {
	for {
		s.lock.Lock()
		if i := bytes.IndexByte(s.buf, '\n'); i >= 0 {
			line := string(s.buf[:i+1])
			s.buf = s.buf[i+1:]
			s.lock.Unlock()
			return line, nil
		}
		if err := s.err; err != nil {
			// flush the unterminated tail before reporting the error.
			line := string(s.buf)
			s.buf = nil
			s.lock.Unlock()
			if line != "" {
				return line, nil
			}
			return "", err
		}
		s.lock.Unlock()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-s.closedCh:
			return "", ErrClosed
		case <-s.notifyCh:
		}
	}
}

// Close implements Transport.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closedCh)
		s.closeErr = s.rwc.Close()
	})
	return s.closeErr
}
