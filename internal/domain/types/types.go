// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/troxeldj/greek-god-arena/internal/domain/match"
	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
)

// Entry is one row of the standings: a contestant and its match record.
type Entry struct {
	Rank         int       `json:"rank"`
	ContestantID string    `json:"contestant_id"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	LastWonAt    time.Time `json:"last_won_at,omitzero"`
}

// SessionView is what a client sees of its session after every call.
type SessionView struct {
	SessionID    string              `json:"session_id"`
	Selection    []roster.Contestant `json:"selection"`
	Match        *MatchView          `json:"match,omitempty"`
	LastWinnerID string              `json:"last_winner_id,omitempty"`
	Celebrating  bool                `json:"celebrating"`

	// Outcome of the transition that produced this view, if any.
	Outcome *match.Outcome `json:"outcome,omitempty"`
	// SelectResult is set by select calls: added, duplicate or full.
	SelectResult string `json:"select_result,omitempty"`
	// Duplicate marks a repeated action id; nothing was applied.
	Duplicate bool `json:"duplicate,omitempty"`
}

// MatchView is the display form of a match.State.
type MatchView struct {
	A         roster.Contestant `json:"a"`
	B         roster.Contestant `json:"b"`
	ScoreA    int               `json:"score_a"`
	ScoreB    int               `json:"score_b"`
	Attribute string            `json:"attribute,omitempty"`
	ValueA    float64           `json:"value_a"`
	ValueB    float64           `json:"value_b"`
	Last      match.Result      `json:"last_result"`
	Phase     match.Phase       `json:"phase"`
	WinnerID  string            `json:"winner_id,omitempty"`
	Threshold int               `json:"threshold"`
	Rounds    int               `json:"rounds"`
}

// NewMatchView renders s; rounds is the number of rounds played so far.
func NewMatchView(s match.State, rounds int) *MatchView {
	va, vb, _ := s.Values()
	return &MatchView{
		A:         s.A,
		B:         s.B,
		ScoreA:    s.ScoreA,
		ScoreB:    s.ScoreB,
		Attribute: s.Attribute,
		ValueA:    va,
		ValueB:    vb,
		Last:      s.Last,
		Phase:     s.Phase,
		WinnerID:  s.WinnerID(),
		Threshold: s.Threshold,
		Rounds:    rounds,
	}
}
