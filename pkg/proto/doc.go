// Package proto provides the serial command protocol codec.
package proto

// The protocol is spoken between a host and microcontroller firmware built
// on a line oriented serial command library. The host sends frames made of a
// command name and space separated arguments terminated by a frame delimiter.
// The firmware answers with text lines terminated by CRLF; a few of these
// lines are literal sentinels carrying protocol meaning, all others are
// telemetry for the operator.
//
// Delimiters are never escaped. Callers build frames only from tokens free
// of both delimiters, and the firmware never prints a sentinel as ordinary
// output.
//
// Producer: host
// Consumer: firmware
