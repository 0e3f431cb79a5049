package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kdsmedia/tapmus/internal/config"
	"github.com/kdsmedia/tapmus/internal/engine"
	"github.com/kdsmedia/tapmus/internal/hub"
	"github.com/kdsmedia/tapmus/internal/live"
	"github.com/kdsmedia/tapmus/internal/logging"
	"github.com/kdsmedia/tapmus/internal/metrics"
	"github.com/kdsmedia/tapmus/internal/notify"
	"github.com/kdsmedia/tapmus/internal/server"
	"github.com/kdsmedia/tapmus/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(srv *server.Server, eng *engine.Engine, h *hub.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		eng.Stop()
		h.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, runtime.Version()).Set(1)

	h := hub.New(clock)
	emitter := notify.NewEmitter(h)
	bridge := live.NewBridge(cfg.BridgeURL)

	eng := engine.New(bridge, emitter, clock, engine.Options{
		SoundDuration:       cfg.SoundDuration,
		LikeStaggerInterval: cfg.LikeStaggerInterval,
		BigLikeThreshold:    cfg.BigLikeThreshold,
		AvatarTierCount:     cfg.AvatarTierCount,
		ResetOnReconnect:    cfg.ResetOnReconnect,
	})
	eng.Start()

	srv := server.NewServer(cfg, eng, h, emitter)

	done := runGracefulShutdown(srv, eng, h)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
