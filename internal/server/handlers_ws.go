package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kdsmedia/tapmus/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for OBS browser source
	},
}

// controlMessage is what overlay clients may send upstream.
type controlMessage struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	ip := c.RealIP()

	allowed, reason := s.limits.Acquire(ip)
	if !allowed {
		metrics.OverlayConnectionsRejected.WithLabelValues(string(reason)).Inc()
		slog.Warn("Rejecting overlay connection", "ip", ip, "reason", reason)
		return c.String(429, "Too many connections")
	}
	defer s.limits.Release(ip)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	clientID, err := s.hub.Register(conn)
	if err != nil {
		slog.Error("Failed to register overlay client", "error", err)
		_ = conn.Close()
		return nil
	}

	// Read pump — blocks until the connection closes. Client messages are
	// control messages; anything malformed is reported and dropped, never
	// allowed to take the connection down.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.handleControlMessage(clientID.String(), raw)
	}

	s.hub.Unregister(conn)

	return nil //nolint:nilerr // ReadMessage err is block-scoped; outer err is nil
}

func (s *Server) handleControlMessage(clientID string, raw []byte) {
	var msg controlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Warn("Malformed control message", "client_id", clientID, "error", err)
		s.emitter.Status("invalid control message")
		return
	}

	switch msg.Type {
	case "connect":
		if msg.Username == "" {
			slog.Warn("Connect request without username", "client_id", clientID)
			s.emitter.Status("username is required")
			return
		}
		slog.Info("Connect requested", "client_id", clientID, "username", msg.Username)
		s.engine.Connect(msg.Username)
	default:
		slog.Warn("Unknown control message type", "client_id", clientID, "type", msg.Type)
		s.emitter.Status(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}
