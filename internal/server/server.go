package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kdsmedia/tapmus/internal/config"
	"github.com/kdsmedia/tapmus/internal/hub"
	"github.com/kdsmedia/tapmus/internal/notify"
)

// liveEngine is the subset of engine operations the server needs.
type liveEngine interface {
	Connect(username string)
	State() string
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	engine    liveEngine
	hub       *hub.Hub
	emitter   *notify.Emitter
	limits    *ConnectionLimits
	startTime time.Time
}

func NewServer(cfg *config.Config, engine liveEngine, h *hub.Hub, emitter *notify.Emitter) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:    e,
		config:  cfg,
		engine:  engine,
		hub:     h,
		emitter: emitter,
		limits: NewConnectionLimits(
			int64(cfg.MaxWebSocketConnections),
			cfg.MaxConnectionsPerIP,
			cfg.ConnectionRatePerSecond,
			cfg.ConnectionRateBurst,
		),
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
