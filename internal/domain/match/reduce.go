package match

import "fmt"

// EventKind selects a transition.
type EventKind int

const (
	EventPlayRound EventKind = iota
	EventReset
)

// Event is an input to Reduce.
type Event struct {
	Kind EventKind
	// Attribute is the sampled attribute for EventPlayRound.
	Attribute string
}

// PlayRound returns a round event comparing attr.
func PlayRound(attr string) Event {
	return Event{Kind: EventPlayRound, Attribute: attr}
}

// Reset returns a reset event.
func Reset() Event {
	return Event{Kind: EventReset}
}

// OutcomeKind tells the caller what a transition means for the surrounding UI.
type OutcomeKind int

const (
	// OutcomeContinued: a round was resolved and the match goes on.
	OutcomeContinued OutcomeKind = iota
	// OutcomeMatchWon: the round ended the match; WinnerID is set.
	OutcomeMatchWon
	// OutcomeReset: the match was discarded; the selection must be cleared.
	OutcomeReset
	// OutcomeIgnored: the event did not apply and the state is unchanged.
	OutcomeIgnored
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContinued:
		return "continued"
	case OutcomeMatchWon:
		return "match_won"
	case OutcomeReset:
		return "reset"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome name in JSON.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses an outcome name.
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	for _, v := range []OutcomeKind{OutcomeContinued, OutcomeMatchWon, OutcomeReset, OutcomeIgnored} {
		if v.String() == string(text) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Outcome is the tagged result of a transition.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	WinnerID string      `json:"winner_id,omitempty"`
}

// Reduce applies e to s and returns the next state.
//
// Round resolution and the win check are a single transition: the round
// that brings a score to the threshold also moves the match to Over.
func Reduce(s State, e Event) (State, Outcome) {
	switch e.Kind {
	case EventPlayRound:
		return playRound(s, e.Attribute)
	case EventReset:
		return New(s.A, s.B, s.Threshold), Outcome{Kind: OutcomeReset}
	default:
		return s, Outcome{Kind: OutcomeIgnored}
	}
}

func playRound(s State, attr string) (State, Outcome) {
	if s.IsOver() {
		return s, Outcome{Kind: OutcomeIgnored}
	}
	va, okA := s.A.Value(attr)
	vb, okB := s.B.Value(attr)
	if !okA || !okB {
		return s, Outcome{Kind: OutcomeIgnored}
	}

	switch {
	case va > vb:
		s.ScoreA++
		s.Last = ResultA
	case vb > va:
		s.ScoreB++
		s.Last = ResultB
	default:
		s.Last = ResultTie
	}
	s.Attribute = attr
	s.Phase = PhaseInProgress

	switch {
	case s.ScoreA >= s.Threshold:
		s.Phase, s.Winner = PhaseOver, ResultA
	case s.ScoreB >= s.Threshold:
		s.Phase, s.Winner = PhaseOver, ResultB
	default:
		return s, Outcome{Kind: OutcomeContinued}
	}
	return s, Outcome{Kind: OutcomeMatchWon, WinnerID: s.WinnerID()}
}
