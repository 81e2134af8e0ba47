package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/troxeldj/greek-god-arena/internal/domain/model"
)

func result(matchID, winner, loser string) model.MatchResult {
	return model.MatchResult{
		MatchID:     matchID,
		SessionID:   "session-1",
		WinnerID:    winner,
		LoserID:     loser,
		WinnerScore: 3,
		LoserScore:  1,
		Rounds:      5,
		FinishedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	recorded, err := store.Record(ctx, result("m1", "zeus", "ares"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recorded {
		t.Error("expected record to succeed")
	}
	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}

	entry, err := store.Rank(ctx, "zeus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.Wins != 1 || entry.Losses != 0 {
		t.Errorf("unexpected zeus entry: %+v", entry)
	}
	if !entry.LastWonAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("expected last won at from result, got %v", entry.LastWonAt)
	}

	entry, err = store.Rank(ctx, "ares")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 2 || entry.Wins != 0 || entry.Losses != 1 {
		t.Errorf("unexpected ares entry: %+v", entry)
	}
	if !entry.LastWonAt.IsZero() {
		t.Errorf("expected zero last won at, got %v", entry.LastWonAt)
	}
}

func TestMemoryStore_DuplicateMatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Record(ctx, result("m1", "zeus", "ares")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recorded, err := store.Record(ctx, result("m1", "zeus", "ares"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded {
		t.Error("expected duplicate match to be skipped")
	}
	entry, _ := store.Rank(ctx, "zeus")
	if entry.Wins != 1 {
		t.Errorf("expected 1 win, got %d", entry.Wins)
	}
}

func TestMemoryStore_MatchMemoryBound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithMatchMemory(2))

	for _, id := range []string{"m1", "m2", "m3"} {
		if _, err := store.Record(ctx, result(id, "zeus", "ares")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// m1 has been forgotten, m3 is still remembered
	if recorded, _ := store.Record(ctx, result("m3", "zeus", "ares")); recorded {
		t.Error("expected m3 to be remembered")
	}
	if recorded, _ := store.Record(ctx, result("m1", "zeus", "ares")); !recorded {
		t.Error("expected m1 to be forgotten")
	}
}

func TestMemoryStore_InvalidResult(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	bad := result("m1", "zeus", "zeus")
	if _, err := store.Record(ctx, bad); !errors.Is(err, model.ErrInvalidResult) {
		t.Errorf("expected ErrInvalidResult, got %v", err)
	}
	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected invalid result to leave store empty, got %d", count)
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore()

	if _, err := store.Record(ctx, result("m1", "zeus", "ares")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMemoryStore_RankingAndTies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithContestants("zeus", "hades", "athena", "ares"))

	if count := store.Count(ctx); count != 4 {
		t.Fatalf("expected 4 pre-registered contestants, got %d", count)
	}

	wins := []struct{ winner, loser string }{
		{"hades", "ares"},
		{"hades", "zeus"},
		{"athena", "ares"},
		{"zeus", "ares"},
	}
	for i, w := range wins {
		if _, err := store.Record(ctx, result(fmt.Sprintf("m%d", i), w.winner, w.loser)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		id   string
		rank int
		wins int
	}{
		{"hades", 1, 2},
		{"athena", 2, 1},
		{"zeus", 2, 1},
		{"ares", 3, 0},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		e := entries[i]
		if e.ContestantID != w.id || e.Rank != w.rank || e.Wins != w.wins {
			t.Errorf("position %d: expected %s rank %d wins %d, got %+v", i, w.id, w.rank, w.wins, e)
		}
	}

	top, err := store.TopN(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 2 || top[1].ContestantID != "athena" {
		t.Errorf("unexpected top 2: %+v", top)
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Rank(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	for _, n := range []int{0, -1} {
		if _, err := store.TopN(ctx, n); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("limit %d: expected ErrInvalidLimit, got %v", n, err)
		}
	}
}

func TestMemoryStore_ConcurrentRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithMatchMemory(10000))

	const goroutines = 8
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				id := fmt.Sprintf("g%d-m%d", g, i)
				if _, err := store.Record(ctx, result(id, "zeus", "ares")); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				_, _ = store.TopN(ctx, 5)
			}
		}(g)
	}
	wg.Wait()

	entry, err := store.Rank(ctx, "zeus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Wins != goroutines*perGoroutine {
		t.Errorf("expected %d wins, got %d", goroutines*perGoroutine, entry.Wins)
	}
}

func TestMemoryStore_ClockFallback(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)
	store := NewMemoryStore(WithClock(func() time.Time { return fixed }))

	r := result("m1", "zeus", "ares")
	r.FinishedAt = time.Time{}
	if _, err := store.Record(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry, _ := store.Rank(ctx, "zeus")
	if !entry.LastWonAt.Equal(fixed) {
		t.Errorf("expected clock time, got %v", entry.LastWonAt)
	}
}
