// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"time"
)

// ErrInvalidResult marks a result that cannot be recorded.
var ErrInvalidResult = errors.New("invalid match result")

// MatchResult is published when a match reaches its winning score.
type MatchResult struct {
	MatchID     string    // unique per completed match
	SessionID   string    // session that played it
	WinnerID    string    // contestant that reached the threshold
	LoserID     string    // the other contestant
	WinnerScore int       // rounds won by the winner
	LoserScore  int       // rounds won by the loser
	Rounds      int       // rounds played, ties included
	FinishedAt  time.Time // when the winning round was resolved
}

// Validate checks the invariants a completed match always satisfies.
func (r MatchResult) Validate() error {
	switch {
	case r.MatchID == "":
		return errors.Join(ErrInvalidResult, errors.New("missing match id"))
	case r.WinnerID == "" || r.LoserID == "":
		return errors.Join(ErrInvalidResult, errors.New("missing contestant"))
	case r.WinnerID == r.LoserID:
		return errors.Join(ErrInvalidResult, errors.New("winner and loser are the same contestant"))
	case r.WinnerScore <= r.LoserScore:
		return errors.Join(ErrInvalidResult, errors.New("winner must outscore loser"))
	case r.Rounds < r.WinnerScore+r.LoserScore:
		return errors.Join(ErrInvalidResult, errors.New("fewer rounds than points scored"))
	}
	return nil
}
