package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kdsmedia/tapmus/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	// The hub answering its command channel is the readiness signal; a
	// wedged hub means clients would connect but never receive anything.
	if s.hub.ClientCount() < 0 {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "hub",
		})
	}

	return c.JSON(200, map[string]any{
		"status":     "ready",
		"live_state": s.engine.State(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
