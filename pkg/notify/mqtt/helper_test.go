package mqtt

import (
	"container/list"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// testToken completes when done is closed.
type testToken struct {
	done chan struct{}
	err  error
}

func newTestToken() *testToken {
	return &testToken{done: make(chan struct{})}
}

func doneToken(err error) *testToken {
	t := &testToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *testToken) Wait() bool {
	<-t.done
	return true
}

func (t *testToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *testToken) Error() error {
	return t.err
}

type published struct {
	topic   string
	payload []byte
}

type testClient struct {
	paho.Client

	connectToken *testToken
	pubToken     *testToken

	lock sync.Mutex
	pubs []published
}

func (c *testClient) Connect() paho.Token {
	return c.connectToken
}

func (c *testClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.pubs = append(c.pubs, published{topic: topic, payload: payload.([]byte)})
	return c.pubToken
}

func (c *testClient) published() []published {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]published(nil), c.pubs...)
}

func newTestQueue(c *testClient, prefix string) *Queue {
	return &Queue{Client: c, TopicPrefix: prefix, subs: make(map[string]*list.List)}
}
