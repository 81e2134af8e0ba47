package service

import (
	"time"

	"github.com/troxeldj/greek-god-arena/internal/domain/match"
	"github.com/troxeldj/greek-god-arena/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of standings workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the results queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithActionCacheSize sets how many action ids each session remembers.
func WithActionCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.actionCacheSize = size
		}
	}
}

// WithWinningScore sets the round wins needed to take a match.
func WithWinningScore(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.winningScore = n
		}
	}
}

// WithCelebrationDelay sets how long the winner flag stays raised.
// Zero disables the flag.
func WithCelebrationDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.celebrationDelay = d
		}
	}
}

// WithSessionTTL sets the idle time after which a session is evicted.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithJanitorInterval sets how often idle sessions are swept.
func WithJanitorInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.janitorInterval = d
		}
	}
}

// WithSampler replaces the random attribute sampler.
func WithSampler(sampler match.Sampler) Option {
	return func(s *Service) {
		if sampler != nil {
			s.sampler = sampler
		}
	}
}

// WithSeed seeds the default sampler. Zero seeds from the clock.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.sampler = match.NewRandomSampler(seed)
	}
}

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
