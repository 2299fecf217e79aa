package mqtt

import (
	"context"
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/serialcmd/pkg/session"
)

const publishTimeout = time.Second

// EventPayload is the JSON form of a session.Event.
type EventPayload struct {
	Kind     string    `json:"kind"`
	Time     time.Time `json:"time"`
	Endpoint string    `json:"endpoint"`
	Command  string    `json:"command,omitempty"`
	Seq      int       `json:"seq,omitempty"`
	Text     string    `json:"text,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// PayloadFrom converts an Event.
func PayloadFrom(ev session.Event) EventPayload {
	p := EventPayload{
		Kind:     ev.Kind.String(),
		Time:     ev.Time.UTC(),
		Endpoint: ev.Endpoint,
		Command:  ev.Command,
		Seq:      ev.Seq,
		Text:     ev.Text,
		Reason:   ev.Reason.String(),
	}
	if ev.Err != nil {
		p.Error = ev.Err.Error()
	}
	return p
}

// EventsTopic returns the topic events of endpoint are published to.
func EventsTopic(endpoint string) string {
	name := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		name = u.Host
	} else {
		name = path.Base(endpoint)
	}
	name = strings.NewReplacer("/", "_", ":", "_", "+", "_", "#", "_").Replace(name)
	return name + "/events"
}

// Reporter publishes session events.
type Reporter struct {
	Queue *Queue
}

// NewReporter creates a Reporter.
func NewReporter(q *Queue) *Reporter {
	return &Reporter{Queue: q}
}

// Report implements session.Reporter. It doesn't wait for the broker.
func (r *Reporter) Report(ctx context.Context, ev session.Event) {
	payload, err := json.Marshal(PayloadFrom(ev))
	if err != nil {
		glog.Errorf("encode event error: %v", err)
		return
	}
	token := r.Queue.Pub(EventsTopic(ev.Endpoint), payload)
	go watchPublish(ev.Kind, token)
}

func watchPublish(kind session.EventKind, token paho.Token) {
	if !token.WaitTimeout(publishTimeout) {
		glog.Warningf("publish %s event timeout", kind)
	} else if err := token.Error(); err != nil {
		glog.Warningf("publish %s event error: %v", kind, err)
	}
}
