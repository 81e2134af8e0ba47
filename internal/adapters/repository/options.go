package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithContestants pre-registers contestants with an empty record so they
// show up in the standings before their first win.
func WithContestants(ids ...string) Option {
	return func(s *MemoryStore) {
		for _, id := range ids {
			if id == "" {
				continue
			}
			if _, ok := s.byID[id]; !ok {
				s.byID[id] = &record{}
			}
		}
	}
}

// WithMatchMemory bounds how many recorded match ids are remembered for
// idempotent Record calls. Values below 1 are ignored.
func WithMatchMemory(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.matchMemory = n
		}
	}
}

// WithClock overrides the time source used when a result has no FinishedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
