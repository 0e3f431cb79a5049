package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	eventBufferSize  = 64
)

// Source establishes live event connections. Satisfied by Bridge.
type Source interface {
	Connect(ctx context.Context, username string) (Connection, error)
}

// Connection is one established live event stream. Events is closed when
// the stream ends for any reason; Close tears the stream down early.
type Connection interface {
	Events() <-chan Event
	Close() error
}

// Bridge dials the live-connector sidecar over websocket.
type Bridge struct {
	url    string
	dialer *websocket.Dialer
}

func NewBridge(url string) *Bridge {
	return &Bridge{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

type connectRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
}

// Connect dials the bridge and asks it to attach to the given username's
// live stream. The returned connection delivers decoded events until the
// stream ends or Close is called.
func (b *Bridge) Connect(ctx context.Context, username string) (Connection, error) {
	ws, _, err := b.dialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial bridge %s: %w", b.url, err)
	}

	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(connectRequest{Action: "connect", Username: username}); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("failed to send connect request: %w", err)
	}

	c := &bridgeConn{
		ws:     ws,
		events: make(chan Event, eventBufferSize),
	}
	go c.readLoop()
	return c, nil
}

type bridgeConn struct {
	ws        *websocket.Conn
	events    chan Event
	closeOnce sync.Once
}

func (c *bridgeConn) Events() <-chan Event {
	return c.events
}

func (c *bridgeConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close()
	})
	return err
}

func (c *bridgeConn) readLoop() {
	defer close(c.events)
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			_ = c.Close()
			return
		}

		ev, err := decodeFrame(raw)
		if err != nil {
			slog.Debug("Skipping undecodable bridge frame", "error", err)
			continue
		}
		if ev == nil {
			continue
		}
		c.events <- ev
	}
}
