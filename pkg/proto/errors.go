package proto

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrame indicates bytes are not a single delimited frame.
	ErrMalformedFrame = errors.New("malformed frame")
)

// EncodingError reports a frame token containing a reserved delimiter.
type EncodingError struct {
	Token string
	Delim byte
}

// Error implements error.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("frame token %q contains reserved delimiter %q", e.Token, e.Delim)
}
