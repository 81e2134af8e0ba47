// Package simulate plays matches against a running arena server and checks
// the game's invariants from the outside.
package simulate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid simulator config")

// Defaults for the play command.
const (
	DefaultBaseURL       = "http://localhost:9080"
	DefaultMatches       = 100
	DefaultWorkers       = 4
	DefaultTimeout       = 10 * time.Second
	DefaultSettleTimeout = 10 * time.Second
	DefaultMaxRounds     = 200
)

// Config holds the settings of one simulation run.
type Config struct {
	BaseURL string        // server base URL
	Matches int           // matches to play
	Workers int           // concurrent sessions
	Seed    int64         // pair selection seed; zero seeds from the clock
	Timeout time.Duration // per request

	// SettleTimeout bounds the wait for standings to catch up with the
	// matches played.
	SettleTimeout time.Duration

	// MaxRounds stops a match that keeps tying. Such a match counts as
	// stalled, not failed.
	MaxRounds int

	Verbose bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		Matches:       DefaultMatches,
		Workers:       DefaultWorkers,
		Timeout:       DefaultTimeout,
		SettleTimeout: DefaultSettleTimeout,
		MaxRounds:     DefaultMaxRounds,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: url must not be empty", ErrInvalidConfig)
	case c.Matches < 1:
		return fmt.Errorf("%w: matches must be at least 1", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.MaxRounds < 1:
		return fmt.Errorf("%w: max rounds must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// Stats summarizes a run.
type Stats struct {
	MatchesPlayed    int
	MatchesWon       int
	MatchesStalled   int
	MatchesFailed    int
	Rounds           int
	Ties             int
	DuplicatesSeen   int
	Wins             map[string]int // per contestant, this run only
	StandingsSettled bool
	Duration         time.Duration
}
