package proto

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	// ArgDelim separates the command name and arguments.
	ArgDelim byte = ' '
	// FrameDelim terminates a frame.
	FrameDelim byte = ';'
)

// Command names understood by the firmware.
const (
	// CmdRequest polls the firmware during the handshake.
	CmdRequest = "__REQUEST__"
	// CmdSyncTime sets the firmware clock, the argument is Unix seconds.
	CmdSyncTime = "SYNC_TIME"
)

// Frame is an outbound command.
type Frame struct {
	Name string
	Args []string
}

// NewFrame creates a Frame, args are stringified using fmt.Sprint.
func NewFrame(name string, args ...interface{}) Frame {
	f := Frame{Name: name}
	if len(args) > 0 {
		f.Args = make([]string, len(args))
		for n, arg := range args {
			f.Args[n] = fmt.Sprint(arg)
		}
	}
	return f
}

// RequestFrame is the handshake poll.
func RequestFrame() Frame {
	return Frame{Name: CmdRequest}
}

// Validate checks no token contains a delimiter.
func (f Frame) Validate() error {
	if err := checkToken(f.Name); err != nil {
		return err
	}
	for _, arg := range f.Args {
		if err := checkToken(arg); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns encoded bytes for sending.
func (f Frame) Bytes() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	size := len(f.Name) + 1
	for _, arg := range f.Args {
		size += len(arg) + 1
	}
	b := make([]byte, 0, size)
	b = append(b, f.Name...)
	for _, arg := range f.Args {
		b = append(b, ArgDelim)
		b = append(b, arg...)
	}
	return append(b, FrameDelim), nil
}

// WriteTo writes encoded bytes.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	b, err := f.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// String returns the frame as it appears on the wire, without validation.
func (f Frame) String() string {
	if len(f.Args) == 0 {
		return f.Name + string(FrameDelim)
	}
	return f.Name + string(ArgDelim) + strings.Join(f.Args, string(ArgDelim)) + string(FrameDelim)
}

// Encode builds the bytes of a frame.
func Encode(name string, args ...interface{}) ([]byte, error) {
	return NewFrame(name, args...).Bytes()
}

// DecodeFrame parses bytes produced by Encode.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) == 0 || b[len(b)-1] != FrameDelim {
		return Frame{}, ErrMalformedFrame
	}
	body := b[:len(b)-1]
	if bytes.IndexByte(body, FrameDelim) >= 0 {
		return Frame{}, ErrMalformedFrame
	}
	tokens := strings.Split(string(body), string(ArgDelim))
	f := Frame{Name: tokens[0]}
	if len(tokens) > 1 {
		f.Args = tokens[1:]
	}
	return f, nil
}

func checkToken(s string) error {
	for _, delim := range []byte{ArgDelim, FrameDelim} {
		if strings.IndexByte(s, delim) >= 0 {
			return &EncodingError{Token: s, Delim: delim}
		}
	}
	return nil
}
