package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
	"github.com/troxeldj/greek-god-arena/internal/domain/types"
	"github.com/troxeldj/greek-god-arena/pkg/logger"
)

// ErrStandings is returned when the standings do not match the matches played.
var ErrStandings = errors.New("standings mismatch")

const settlePollInterval = 100 * time.Millisecond

type pairing struct {
	a, b string
}

// Run plays cfg.Matches matches against the server and verifies the
// standings afterwards. The returned Stats are filled even on error.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	stats := &Stats{Wins: make(map[string]int)}
	if err := cfg.Validate(); err != nil {
		return stats, err
	}
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting arena simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("matches", cfg.Matches),
		logger.Int("workers", cfg.Workers),
	)

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	contestants, err := client.Roster(ctx)
	if err != nil {
		return stats, fmt.Errorf("roster: %w", err)
	}
	if len(contestants) < 2 {
		return stats, fmt.Errorf("roster has %d contestants, need at least 2", len(contestants))
	}

	baseline, err := snapshot(ctx, client, len(contestants))
	if err != nil {
		return stats, fmt.Errorf("baseline standings: %w", err)
	}

	if err := playAll(ctx, cfg, client, pairings(contestants, cfg.Matches, cfg.Seed), stats, log); err != nil {
		return stats, err
	}

	if err := settle(ctx, cfg, client, len(contestants), baseline, stats); err != nil {
		return stats, err
	}
	stats.StandingsSettled = true

	log.Info(ctx, "simulation finished",
		logger.Int("played", stats.MatchesPlayed),
		logger.Int("won", stats.MatchesWon),
		logger.Int("stalled", stats.MatchesStalled),
		logger.Int("rounds", stats.Rounds),
		logger.Int("ties", stats.Ties),
		logger.Int("duplicates", stats.DuplicatesSeen),
		logger.Duration("duration", time.Since(start)),
	)
	return stats, nil
}

// pairings draws n ordered pairs of distinct contestants.
func pairings(contestants []roster.Contestant, n int, seed int64) []pairing {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	out := make([]pairing, n)
	for i := range out {
		a := rng.Intn(len(contestants))
		b := rng.Intn(len(contestants) - 1)
		if b >= a {
			b++
		}
		out[i] = pairing{a: contestants[a].ID, b: contestants[b].ID}
	}
	return out
}

func playAll(ctx context.Context, cfg *Config, client *Client, pairs []pairing, stats *Stats, log logger.Logger) error {
	jobs := make(chan pairing, cfg.Workers*2)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				rep, err := playMatch(ctx, client, p.a, p.b, cfg.MaxRounds)

				mu.Lock()
				stats.MatchesPlayed++
				stats.Rounds += rep.Rounds
				stats.Ties += rep.Ties
				stats.DuplicatesSeen += rep.Duplicates
				switch {
				case err != nil:
					stats.MatchesFailed++
					failures = append(failures, err)
				case rep.WinnerID == "":
					stats.MatchesStalled++
				default:
					stats.MatchesWon++
					stats.Wins[rep.WinnerID]++
				}
				mu.Unlock()

				if err != nil {
					log.Warn(ctx, "match failed", logger.String("a", p.a), logger.String("b", p.b), logger.Error(err))
				} else if cfg.Verbose {
					log.Info(ctx, "match played",
						logger.String("a", p.a),
						logger.String("b", p.b),
						logger.String("winner", rep.WinnerID),
						logger.Int("rounds", rep.Rounds),
					)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range pairs {
			select {
			case <-ctx.Done():
				return
			case jobs <- p:
			}
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(failures...)
}

type record struct {
	wins, losses int
}

func snapshot(ctx context.Context, client *Client, limit int) (map[string]record, error) {
	entries, err := client.Standings(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := checkOrder(entries); err != nil {
		return nil, err
	}
	out := make(map[string]record, len(entries))
	for _, e := range entries {
		out[e.ContestantID] = record{wins: e.Wins, losses: e.Losses}
	}
	return out, nil
}

// settle waits for the standings workers to record every won match, then
// checks the per-contestant deltas against what this run observed.
func settle(ctx context.Context, cfg *Config, client *Client, limit int, baseline map[string]record, stats *Stats) error {
	deadline := time.Now().Add(cfg.SettleTimeout)
	for {
		current, err := snapshot(ctx, client, limit)
		if err != nil {
			return err
		}
		err = compare(baseline, current, stats)
		if err == nil {
			return checkRanks(ctx, client, current)
		}
		if time.Now().After(deadline) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settlePollInterval):
		}
	}
}

func compare(baseline, current map[string]record, stats *Stats) error {
	var lost int
	for id, rec := range current {
		gained := rec.wins - baseline[id].wins
		if gained != stats.Wins[id] {
			return fmt.Errorf("%w: %s gained %d wins, played %d", ErrStandings, id, gained, stats.Wins[id])
		}
		lost += rec.losses - baseline[id].losses
	}
	if lost != stats.MatchesWon {
		return fmt.Errorf("%w: %d losses recorded for %d won matches", ErrStandings, lost, stats.MatchesWon)
	}
	return nil
}

// checkOrder verifies wins are non-increasing and ranks are dense.
func checkOrder(entries []types.Entry) error {
	for i, e := range entries {
		if i == 0 {
			if e.Rank != 1 {
				return fmt.Errorf("%w: first rank is %d", ErrStandings, e.Rank)
			}
			continue
		}
		prev := entries[i-1]
		switch {
		case e.Wins > prev.Wins:
			return fmt.Errorf("%w: %s has more wins than %s above it", ErrStandings, e.ContestantID, prev.ContestantID)
		case e.Wins == prev.Wins && e.Rank != prev.Rank:
			return fmt.Errorf("%w: %s and %s tie on wins but not on rank", ErrStandings, e.ContestantID, prev.ContestantID)
		case e.Wins < prev.Wins && e.Rank != prev.Rank+1:
			return fmt.Errorf("%w: rank gap between %s and %s", ErrStandings, prev.ContestantID, e.ContestantID)
		}
	}
	return nil
}

func checkRanks(ctx context.Context, client *Client, current map[string]record) error {
	for id, rec := range current {
		e, err := client.Rank(ctx, id)
		if err != nil {
			return err
		}
		if e.Wins != rec.wins || e.Losses != rec.losses {
			return fmt.Errorf("%w: rank of %s reports %d/%d, standings %d/%d",
				ErrStandings, id, e.Wins, e.Losses, rec.wins, rec.losses)
		}
	}
	return nil
}
