package transport

import (
	"net/url"

	"golang.org/x/net/websocket"
)

// OpenWebsocket connects to a serial-over-websocket bridge.
func OpenWebsocket(endpoint string) (*Stream, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host + "/"
	if u.Scheme == "wss" {
		origin = "https://" + u.Host + "/"
	}
	conn, err := websocket.Dial(endpoint, "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return NewStream(conn), nil
}
