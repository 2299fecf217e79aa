package proto

import "strings"

// Status sentinels printed by the firmware.
const (
	SentinelResponse = "__RESPONSE__"
	SentinelSuccess  = "_CMD_SUCCESS_"
	SentinelFail     = "_CMD_FAIL_"
	SentinelFinish   = "_CMD_FINISH_"
)

// LineTerminator ends every line from the firmware.
const LineTerminator = "\r\n"

// StatusKind classifies a status line.
type StatusKind int

const (
	// StatusUnclassified is ordinary output.
	StatusUnclassified StatusKind = iota
	// StatusResponseReady means the firmware is listening for a command.
	StatusResponseReady
	// StatusSuccess means the command succeeded.
	StatusSuccess
	// StatusFail means the command failed.
	StatusFail
	// StatusFinish means the firmware is done with the session.
	StatusFinish
)

var statusKindNames = map[StatusKind]string{
	StatusUnclassified:  "unclassified",
	StatusResponseReady: "ready",
	StatusSuccess:       "success",
	StatusFail:          "fail",
	StatusFinish:        "finish",
}

// String implements fmt.Stringer.
func (k StatusKind) String() string {
	if name, ok := statusKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// StatusLine is a classified line received from the firmware.
type StatusLine struct {
	Kind StatusKind
	// Text is the line with terminator stripped.
	Text string
}

// IsSentinel indicates the line carries protocol meaning.
func (s StatusLine) IsSentinel() bool {
	return s.Kind != StatusUnclassified
}

// ClassifyLine strips the line terminator and classifies the text.
func ClassifyLine(raw string) StatusLine {
	text := strings.TrimSuffix(raw, "\n")
	text = strings.TrimSuffix(text, "\r")
	line := StatusLine{Text: text}
	switch text {
	case SentinelResponse:
		line.Kind = StatusResponseReady
	case SentinelSuccess:
		line.Kind = StatusSuccess
	case SentinelFail:
		line.Kind = StatusFail
	case SentinelFinish:
		line.Kind = StatusFinish
	}
	return line
}
