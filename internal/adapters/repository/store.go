// Package repository defines the standings store interface and errors.
package repository

import (
	"context"

	"github.com/troxeldj/greek-god-arena/internal/domain/model"
	"github.com/troxeldj/greek-god-arena/internal/domain/types"
)

// Entry represents a standings row.
type Entry = types.Entry

// Store provides read/write access to the standings.
type Store interface {
	// Record applies a completed match to the standings.
	// Returns false when the match id was already recorded.
	Record(ctx context.Context, result model.MatchResult) (bool, error)

	// Rank returns the current rank and record for a contestant.
	// Returns ErrNotFound if the contestant is unknown.
	Rank(ctx context.Context, contestantID string) (Entry, error)

	// TopN returns the top-N entries ordered by wins desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of contestants tracked.
	Count(ctx context.Context) int
}
