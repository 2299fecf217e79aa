package transport

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

const dialTimeout = 5 * time.Second

// IsNetworkEndpoint indicates endpoint is a network bridge rather than
// a local serial device.
func IsNetworkEndpoint(endpoint string) bool {
	switch endpointScheme(endpoint) {
	case "ws", "wss", "tcp":
		return true
	}
	return false
}

func endpointScheme(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Scheme
}

// Open opens a Transport by endpoint:
//
//	ws://host:port/path, wss://host:port/path: websocket bridge
//	tcp://host:port: raw TCP bridge (e.g. ser2net)
//	anything else: a serial device at baud
func Open(endpoint string, baud int) (Transport, error) {
	switch endpointScheme(endpoint) {
	case "ws", "wss":
		return OpenWebsocket(endpoint)
	case "tcp":
		u, _ := url.Parse(endpoint)
		if u.Host == "" {
			return nil, fmt.Errorf("invalid tcp endpoint %q", endpoint)
		}
		conn, err := net.DialTimeout("tcp", u.Host, dialTimeout)
		if err != nil {
			return nil, err
		}
		return NewStream(conn), nil
	}
	return OpenSerial(endpoint, baud)
}
