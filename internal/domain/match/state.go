// Package match implements the two-contestant match state machine.
//
// A match moves NotStarted -> InProgress -> Over. Each round compares one
// attribute; the strictly larger value scores a point and the first side
// to reach the threshold wins. All transitions go through Reduce, which is
// pure: randomness is supplied by the caller inside the event.
package match

import (
	"fmt"

	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
)

// DefaultThreshold is the number of round wins that ends a match.
const DefaultThreshold = 3

// Phase is the lifecycle stage of a match.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, v := range []Phase{PhaseNotStarted, PhaseInProgress, PhaseOver} {
		if v.String() == string(text) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Result names a side of the match, or a tie for round results.
type Result int

const (
	ResultNone Result = iota
	ResultA
	ResultB
	ResultTie
)

func (r Result) String() string {
	switch r {
	case ResultA:
		return "a"
	case ResultB:
		return "b"
	case ResultTie:
		return "tie"
	default:
		return "none"
	}
}

// MarshalText renders the result name in JSON.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a result name.
func (r *Result) UnmarshalText(text []byte) error {
	for _, v := range []Result{ResultNone, ResultA, ResultB, ResultTie} {
		if v.String() == string(text) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", text)
}

// State is a snapshot of one match. The zero value is not usable; build
// states with New.
type State struct {
	A         roster.Contestant
	B         roster.Contestant
	ScoreA    int
	ScoreB    int
	Attribute string // empty until the first round
	Last      Result
	Phase     Phase
	Winner    Result // ResultA or ResultB once Over
	Threshold int
}

// New returns the initial state for a match between a and b.
// A threshold below 1 falls back to DefaultThreshold.
func New(a, b roster.Contestant, threshold int) State {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return State{A: a, B: b, Threshold: threshold}
}

// IsOver reports whether a winner has been decided.
func (s State) IsOver() bool {
	return s.Phase == PhaseOver
}

// WinnerID returns the id of the winning contestant, or "".
func (s State) WinnerID() string {
	switch s.Winner {
	case ResultA:
		return s.A.ID
	case ResultB:
		return s.B.ID
	default:
		return ""
	}
}

// Values returns both contestants' values for the current attribute.
func (s State) Values() (a, b float64, ok bool) {
	if s.Attribute == "" {
		return 0, 0, false
	}
	a, okA := s.A.Value(s.Attribute)
	b, okB := s.B.Value(s.Attribute)
	return a, b, okA && okB
}

// SharedAttributes returns the sorted attribute keys present on both sides.
func (s State) SharedAttributes() []string {
	keys := s.A.AttributeNames()
	shared := keys[:0]
	for _, k := range keys {
		if _, ok := s.B.Value(k); ok {
			shared = append(shared, k)
		}
	}
	return shared
}
