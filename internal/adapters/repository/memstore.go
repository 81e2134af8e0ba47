package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/troxeldj/greek-god-arena/internal/domain/model"
	"github.com/troxeldj/greek-god-arena/pkg/metrics"
)

const defaultMatchMemory = 4096

type record struct {
	wins      int
	losses    int
	lastWonAt time.Time
}

// MemoryStore keeps the standings in process memory.
// Ordering is wins desc, then contestant id asc.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*record

	// recent match ids in arrival order, for idempotent Record
	seen        map[string]struct{}
	seenOrder   []string
	matchMemory int

	now func() time.Time
}

// NewMemoryStore constructs an empty standings store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:        make(map[string]*record),
		seen:        make(map[string]struct{}),
		matchMemory: defaultMatchMemory,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateStandingsContestants(len(s.byID))
	return s
}

// Record implements Store.Record.
func (s *MemoryStore) Record(ctx context.Context, result model.MatchResult) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := result.Validate(); err != nil {
		return false, fmt.Errorf("record match %q: %w", result.MatchID, err)
	}

	at := result.FinishedAt
	if at.IsZero() {
		at = s.now()
	}

	s.mu.Lock()
	if _, dup := s.seen[result.MatchID]; dup {
		s.mu.Unlock()
		return false, nil
	}
	s.remember(result.MatchID)

	w := s.recordFor(result.WinnerID)
	w.wins++
	if at.After(w.lastWonAt) {
		w.lastWonAt = at
	}
	s.recordFor(result.LoserID).losses++
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStandingsContestants(count)
	return true, nil
}

// Rank implements Store.Rank.
func (s *MemoryStore) Rank(ctx context.Context, contestantID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[contestantID]; !ok {
		return Entry{}, ErrNotFound
	}
	for _, e := range s.sortedLocked() {
		if e.ContestantID == contestantID {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// TopN implements Store.TopN.
func (s *MemoryStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	all := s.sortedLocked()
	s.mu.RUnlock()

	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *MemoryStore) recordFor(id string) *record {
	r, ok := s.byID[id]
	if !ok {
		r = &record{}
		s.byID[id] = r
	}
	return r
}

func (s *MemoryStore) remember(matchID string) {
	s.seen[matchID] = struct{}{}
	s.seenOrder = append(s.seenOrder, matchID)
	if len(s.seenOrder) > s.matchMemory {
		oldest := s.seenOrder[0]
		s.seenOrder = s.seenOrder[1:]
		delete(s.seen, oldest)
	}
}

// sortedLocked returns every row in rank order. Caller holds s.mu.
func (s *MemoryStore) sortedLocked() []Entry {
	out := make([]Entry, 0, len(s.byID))
	for id, r := range s.byID {
		out = append(out, Entry{
			ContestantID: id,
			Wins:         r.wins,
			Losses:       r.losses,
			LastWonAt:    r.lastWonAt,
		})
	}
	sortEntries(out)
	assignRanksWithTies(out)
	return out
}

// sortEntries orders by wins desc, then contestant id asc.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].ContestantID < entries[j].ContestantID
	})
}

// assignRanksWithTies gives equal wins the same rank; ranks stay consecutive.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Wins != entries[i-1].Wins {
			rank++
		}
		entries[i].Rank = rank
	}
}
