package transport

import (
	"time"

	"github.com/tarm/serial"
)

// serialReadTimeout bounds a single read so Close is observed promptly.
const serialReadTimeout = 100 * time.Millisecond

// OpenSerial opens a serial device with 8N1 framing.
func OpenSerial(device string, baud int) (*Stream, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: serialReadTimeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return nil, err
	}
	return NewStreamWithReadTimeout(port), nil
}
