package simulate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/troxeldj/greek-god-arena/internal/domain/match"
	"github.com/troxeldj/greek-god-arena/internal/domain/types"
)

// ErrInvariant marks a server response that breaks a game rule.
var ErrInvariant = errors.New("invariant violated")

// matchReport is the result of one played match.
type matchReport struct {
	WinnerID   string // empty when stalled
	Rounds     int
	Ties       int
	Duplicates int
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// playMatch runs one session from selection to reset, checking every view
// the server returns.
func playMatch(ctx context.Context, c *Client, a, b string, maxRounds int) (rep matchReport, err error) {
	sess, err := c.CreateSession(ctx)
	if err != nil {
		return rep, err
	}
	defer func() {
		if derr := c.DeleteSession(context.WithoutCancel(ctx), sess.SessionID); derr != nil && err == nil {
			err = derr
		}
	}()
	id := sess.SessionID

	if err := selectPair(ctx, c, id, a, b); err != nil {
		return rep, err
	}

	prev, err := c.Session(ctx, id)
	if err != nil {
		return rep, err
	}
	if prev.Match == nil || prev.Match.Phase != match.PhaseNotStarted {
		return rep, violation("session %s: no fresh match after two selections", id)
	}

	for prev.Match.Phase != match.PhaseOver {
		if rep.Rounds >= maxRounds {
			break
		}
		actionID := uuid.NewString()
		v, err := c.PlayRound(ctx, id, actionID)
		if err != nil {
			return rep, err
		}
		if err := checkRound(*prev.Match, v); err != nil {
			return rep, fmt.Errorf("session %s: %w", id, err)
		}
		rep.Rounds++
		if v.Match.Last == match.ResultTie {
			rep.Ties++
		}

		// the same click sent twice must not play a second round
		again, err := c.PlayRound(ctx, id, actionID)
		if err != nil {
			return rep, err
		}
		if !again.Duplicate || again.Match == nil || again.Match.Rounds != v.Match.Rounds {
			return rep, violation("session %s: repeated action %s was applied", id, actionID)
		}
		rep.Duplicates++

		prev = v
	}

	if prev.Match.Phase == match.PhaseOver {
		if err := checkWon(prev); err != nil {
			return rep, fmt.Errorf("session %s: %w", id, err)
		}
		rep.WinnerID = prev.Match.WinnerID

		v, err := c.PlayRound(ctx, id, uuid.NewString())
		if err != nil {
			return rep, err
		}
		if v.Outcome == nil || v.Outcome.Kind != match.OutcomeIgnored {
			return rep, violation("session %s: round after the match ended was not ignored", id)
		}
	}

	v, err := c.Reset(ctx, id, uuid.NewString())
	if err != nil {
		return rep, err
	}
	if v.Match != nil || len(v.Selection) != 0 {
		return rep, violation("session %s: reset left a selection or match behind", id)
	}
	if v.LastWinnerID != "" {
		return rep, violation("session %s: reset kept last winner %s", id, v.LastWinnerID)
	}
	return rep, nil
}

func selectPair(ctx context.Context, c *Client, id, a, b string) error {
	v, err := c.Select(ctx, id, a, uuid.NewString())
	if err != nil {
		return err
	}
	if v.SelectResult != "added" || len(v.Selection) != 1 {
		return violation("session %s: first pick %s not added", id, a)
	}

	v, err = c.Select(ctx, id, a, uuid.NewString())
	if err != nil {
		return err
	}
	if v.SelectResult != "duplicate" || len(v.Selection) != 1 {
		return violation("session %s: repeated pick %s changed the selection", id, a)
	}

	v, err = c.Select(ctx, id, b, uuid.NewString())
	if err != nil {
		return err
	}
	if v.SelectResult != "added" || len(v.Selection) != 2 || v.Match == nil {
		return violation("session %s: second pick %s did not start a match", id, b)
	}
	if v.Match.A.ID != a || v.Match.B.ID != b {
		return violation("session %s: match sides %s/%s do not follow pick order", id, v.Match.A.ID, v.Match.B.ID)
	}
	return nil
}

// checkRound verifies one transition from prev to the returned view.
func checkRound(prev types.MatchView, v types.SessionView) error {
	m := v.Match
	if m == nil || v.Outcome == nil {
		return violation("round returned no match or outcome")
	}

	dA, dB := m.ScoreA-prev.ScoreA, m.ScoreB-prev.ScoreB
	switch {
	case m.ValueA > m.ValueB:
		if dA != 1 || dB != 0 || m.Last != match.ResultA {
			return violation("A had %v > %v on %s but scores moved %d/%d", m.ValueA, m.ValueB, m.Attribute, dA, dB)
		}
	case m.ValueB > m.ValueA:
		if dA != 0 || dB != 1 || m.Last != match.ResultB {
			return violation("B had %v > %v on %s but scores moved %d/%d", m.ValueB, m.ValueA, m.Attribute, dA, dB)
		}
	default:
		if dA != 0 || dB != 0 || m.Last != match.ResultTie {
			return violation("tie on %s but scores moved %d/%d", m.Attribute, dA, dB)
		}
	}

	if _, ok := m.A.Attributes[m.Attribute]; !ok {
		return violation("attribute %s is not one of %s's", m.Attribute, m.A.ID)
	}
	if _, ok := m.B.Attributes[m.Attribute]; !ok {
		return violation("attribute %s is not one of %s's", m.Attribute, m.B.ID)
	}

	over := m.ScoreA >= m.Threshold || m.ScoreB >= m.Threshold
	if over != (m.Phase == match.PhaseOver) {
		return violation("phase %s with scores %d/%d and threshold %d", m.Phase, m.ScoreA, m.ScoreB, m.Threshold)
	}
	want := match.OutcomeContinued
	if over {
		want = match.OutcomeMatchWon
	}
	if v.Outcome.Kind != want {
		return violation("outcome %s, want %s", v.Outcome.Kind, want)
	}
	return nil
}

func checkWon(v types.SessionView) error {
	m := v.Match
	if m.ScoreA >= m.Threshold && m.ScoreB >= m.Threshold {
		return violation("both sides reached the threshold")
	}
	winner := m.A.ID
	if m.ScoreB >= m.Threshold {
		winner = m.B.ID
	}
	if m.WinnerID != winner || v.Outcome.WinnerID != winner {
		return violation("winner %q, want %q", m.WinnerID, winner)
	}
	if v.LastWinnerID != winner {
		return violation("last winner %q, want %q", v.LastWinnerID, winner)
	}
	return nil
}
