package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialcmd/pkg/session"
)

func TestEventsTopic(t *testing.T) {
	require.Equal(t, "ttyUSB0/events", EventsTopic("/dev/ttyUSB0"))
	require.Equal(t, "ttyACM0/events", EventsTopic("ttyACM0"))
	require.Equal(t, "esp.local_81/events", EventsTopic("ws://esp.local:81/serial"))
	require.Equal(t, "localhost_2000/events", EventsTopic("tcp://localhost:2000"))
}

func TestPayloadFrom(t *testing.T) {
	ev := session.Event{
		Kind:     session.EventTerminated,
		Time:     time.Unix(1700000000, 0),
		Endpoint: "/dev/ttyUSB0",
		Command:  session.CommandSyncTime,
		Reason:   session.ReasonTransportError,
		Err:      errors.New("eof"),
	}
	b, err := json.Marshal(PayloadFrom(ev))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"kind": "terminated",
		"time": "2023-11-14T22:13:20Z",
		"endpoint": "/dev/ttyUSB0",
		"command": "sync_time",
		"reason": "transport-error",
		"error": "eof"
	}`, string(b))

	var decoded EventPayload
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "terminated", decoded.Kind)
	require.True(t, decoded.Time.Equal(ev.Time))
}

func TestReporterDoesNotWaitForBroker(t *testing.T) {
	token := newTestToken()
	defer close(token.done)
	c := &testClient{pubToken: token}
	r := NewReporter(newTestQueue(c, "lab/"))

	start := time.Now()
	for n := 1; n <= 3; n++ {
		r.Report(context.Background(), session.Event{
			Kind:     session.EventRequest,
			Endpoint: "/dev/ttyUSB0",
			Seq:      n,
		})
	}
	require.True(t, time.Since(start) < publishTimeout)

	pubs := c.published()
	require.Len(t, pubs, 3)
	require.Equal(t, "lab/ttyUSB0/events", pubs[0].topic)
	var ev EventPayload
	require.NoError(t, json.Unmarshal(pubs[2].payload, &ev))
	require.Equal(t, "request", ev.Kind)
	require.Equal(t, 3, ev.Seq)
}
