// Package transport adapts non-TCP byte streams to net.Conn so the noise
// and noisepeer packages — which only ever see a net.Conn — never need to
// know whether the bytes they read and write actually crossed a raw TCP
// socket or a WebSocket. One WebSocket binary frame carries exactly the
// bytes of one Write call; reads reassemble a read-side byte stream.
package transport

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Listener accepts incoming connections already adapted to net.Conn,
// mirroring net.Listener so callers can treat a WebSocket listener and a
// plain net.Listener interchangeably.
type Listener interface {
	Accept() (net.Conn, error)
	Close() error
	Addr() net.Addr
}

// DialWebSocket opens a client connection to a ws:// or wss:// endpoint and
// wraps it as a net.Conn. endpoint is a bare host:port; the scheme is
// chosen by useTLS.
func DialWebSocket(endpoint string, useTLS bool) (net.Conn, error) {
	scheme := "ws"
	if useTLS {
		scheme = "wss"
	}
	u := fmt.Sprintf("%s://%s/", scheme, endpoint)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		Subprotocols:     []string{"binary"},
	}
	if useTLS {
		dialer.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	wsConn, _, err := dialer.Dial(u, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: websocket dial: %w", err)
	}
	return newWSConn(wsConn), nil
}

// ListenWebSocket starts an HTTP server on addr that upgrades every
// incoming request on path "/" to a WebSocket and hands the resulting
// net.Conn to callers via Accept.
func ListenWebSocket(addr string) (Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	l := &wsListener{
		ln:    ln,
		conns: make(chan net.Conn),
		errs:  make(chan error, 1),
	}

	upgrader := websocket.Upgrader{
		Subprotocols:    []string{"binary"},
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		l.conns <- newWSConn(wsConn)
	})

	server := &http.Server{Handler: mux}
	l.server = server

	go func() {
		l.errs <- server.Serve(ln)
	}()

	return l, nil
}

type wsListener struct {
	ln     net.Listener
	server *http.Server
	conns  chan net.Conn
	errs   chan error
}

func (l *wsListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case err := <-l.errs:
		return nil, err
	}
}

func (l *wsListener) Close() error {
	return l.server.Close()
}

func (l *wsListener) Addr() net.Addr {
	return l.ln.Addr()
}

// wsConn adapts a *websocket.Conn to net.Conn: each Write call becomes one
// binary WebSocket message, and Read reassembles incoming binary messages
// into a continuous byte stream since io.Reader callers may ask for fewer
// bytes than one message contains.
type wsConn struct {
	conn *websocket.Conn
	buf  bytes.Buffer
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) Read(p []byte) (int, error) {
	for c.buf.Len() == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		c.buf.Write(data)
	}
	return c.buf.Read(p)
}

func (c *wsConn) Write(p []byte) (int, error) {
	if err := c.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error                      { return c.conn.Close() }
func (c *wsConn) LocalAddr() net.Addr               { return c.conn.LocalAddr() }
func (c *wsConn) RemoteAddr() net.Addr              { return c.conn.RemoteAddr() }
func (c *wsConn) SetDeadline(t time.Time) error     { return c.conn.UnderlyingConn().SetDeadline(t) }
func (c *wsConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *wsConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
