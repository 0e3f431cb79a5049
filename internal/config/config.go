package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"3000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// PublicDir is the static asset base path served at the root route
	// (overlay page, tier images, sound files).
	PublicDir string `env:"PUBLIC_DIR" default:"public"`

	// BridgeURL is the websocket endpoint of the live-connector bridge
	// that delivers TikTok live events as JSON frames.
	BridgeURL string `env:"BRIDGE_URL" default:"ws://127.0.0.1:8765/ws"`

	// SoundDuration is how long a played cue occupies the shared audio
	// channel before the arbiter releases it.
	SoundDuration time.Duration `env:"SOUND_DURATION" default:"5s"`

	// LikeStaggerInterval spaces the floating photos of a like batch:
	// the i-th photo of a batch fires at i*interval.
	LikeStaggerInterval time.Duration `env:"LIKE_STAGGER_INTERVAL" default:"1s"`

	// BigLikeThreshold is the batch size at which a like event also
	// requests the big-like sound cue (batches of at least this many).
	BigLikeThreshold int `env:"BIG_LIKE_THRESHOLD" default:"10"`

	// AvatarTierCount is the number of tier images available under
	// PublicDir/images. Must be at least 1.
	AvatarTierCount int `env:"AVATAR_TIER_COUNT" default:"3"`

	// ResetOnReconnect clears all per-user counters and any active sound
	// cue when a new live connection replaces the current one.
	ResetOnReconnect bool `env:"RESET_ON_RECONNECT" default:"true"`

	MaxWebSocketConnections int     `env:"MAX_WEBSOCKET_CONNECTIONS" default:"1000"`
	MaxConnectionsPerIP     int     `env:"MAX_CONNECTIONS_PER_IP" default:"20"`
	ConnectionRatePerSecond float64 `env:"CONNECTION_RATE_PER_SECOND" default:"10"`
	ConnectionRateBurst     int     `env:"CONNECTION_RATE_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.BridgeURL == "" {
		return fmt.Errorf("BRIDGE_URL is required")
	}
	if cfg.SoundDuration <= 0 {
		return fmt.Errorf("SOUND_DURATION must be positive, got %v", cfg.SoundDuration)
	}
	if cfg.LikeStaggerInterval <= 0 {
		return fmt.Errorf("LIKE_STAGGER_INTERVAL must be positive, got %v", cfg.LikeStaggerInterval)
	}
	if cfg.BigLikeThreshold < 1 {
		return fmt.Errorf("BIG_LIKE_THRESHOLD must be at least 1, got %d", cfg.BigLikeThreshold)
	}
	if cfg.AvatarTierCount < 1 {
		return fmt.Errorf("AVATAR_TIER_COUNT must be at least 1, got %d", cfg.AvatarTierCount)
	}
	if cfg.MaxWebSocketConnections < 1 {
		return fmt.Errorf("MAX_WEBSOCKET_CONNECTIONS must be at least 1, got %d", cfg.MaxWebSocketConnections)
	}
	return nil
}
