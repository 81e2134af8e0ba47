// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RosterPath points at a YAML roster file. Empty uses the embedded roster.
	RosterPath string `koanf:"roster_path"`

	// WinningScore is the number of round wins that ends a match.
	WinningScore int `koanf:"winning_score"`

	// CelebrationMS is how long the winner celebration flag stays up.
	CelebrationMS int `koanf:"celebration_ms"`

	// SessionTTLSec evicts sessions idle for longer. Zero keeps the default.
	SessionTTLSec int `koanf:"session_ttl_sec"`

	// MaxSessions caps the number of live sessions.
	MaxSessions int `koanf:"max_sessions"`

	// ActionCacheSize bounds the per-session memory of applied action ids.
	ActionCacheSize int `koanf:"action_cache_size"`

	// QueueSize bounds the in-memory match results queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of results workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// RandomSeed seeds attribute sampling. Zero seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		WinningScore:      3,
		CelebrationMS:     2000,
		SessionTTLSec:     1800,
		MaxSessions:       10_000,
		ActionCacheSize:   256,
		QueueSize:         1024,
		WorkerCount:       2,
		MaxStandingsLimit: 100,
	}
}

// CelebrationDelay returns CelebrationMS as a duration.
func (c *Config) CelebrationDelay() time.Duration {
	return time.Duration(c.CelebrationMS) * time.Millisecond
}

// SessionTTL returns SessionTTLSec as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WinningScore < 1:
		return fmt.Errorf("%w: winning_score must be at least 1", ErrInvalidConfig)
	case c.CelebrationMS < 0:
		return fmt.Errorf("%w: celebration_ms must not be negative", ErrInvalidConfig)
	case c.SessionTTLSec < 0:
		return fmt.Errorf("%w: session_ttl_sec must not be negative", ErrInvalidConfig)
	case c.MaxSessions < 1:
		return fmt.Errorf("%w: max_sessions must be at least 1", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be at least 1", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be at least 1", ErrInvalidConfig)
	case c.MaxStandingsLimit < 1:
		return fmt.Errorf("%w: max_standings_limit must be at least 1", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
