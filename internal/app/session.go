package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/troxeldj/greek-god-arena/internal/domain/celebration"
	"github.com/troxeldj/greek-god-arena/internal/domain/dedupe"
	"github.com/troxeldj/greek-god-arena/internal/domain/match"
	"github.com/troxeldj/greek-god-arena/internal/domain/selection"
	"github.com/troxeldj/greek-god-arena/internal/domain/types"
)

// session is one player's selection, match and display state.
// All fields below mu are guarded by it.
type session struct {
	id       string
	actions  dedupe.Deduper
	flag     *celebration.Flag
	lastSeen atomic.Int64 // unix nanos

	mu         sync.Mutex
	gate       selection.Gate
	ctrl       *match.Controller
	rounds     int
	lastWinner string
	closed     bool
}

func (s *session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *session) idleSince(cutoff time.Time) bool {
	return s.lastSeen.Load() < cutoff.UnixNano()
}

// viewLocked renders the session. Caller holds s.mu.
func (s *session) viewLocked() types.SessionView {
	v := types.SessionView{
		SessionID:    s.id,
		Selection:    s.gate.Selected(),
		LastWinnerID: s.lastWinner,
		Celebrating:  s.flag.Active(),
	}
	if s.ctrl != nil {
		v.Match = types.NewMatchView(s.ctrl.State(), s.rounds)
	}
	return v
}

// clearLocked resets the match and acts on the reducer's Reset outcome:
// the selection, the match and the last winner are cleared. It reports
// whether an unfinished match was abandoned and whether a celebration was
// cut short.
func (s *session) clearLocked() (abandoned, cancelled bool) {
	out := match.Outcome{Kind: match.OutcomeReset}
	if s.ctrl != nil {
		abandoned = !s.ctrl.State().IsOver()
		out = s.ctrl.Reset()
	}
	if out.Kind == match.OutcomeReset {
		s.ctrl = nil
		s.rounds = 0
		s.gate.Clear()
		s.lastWinner = out.WinnerID
	}
	cancelled = s.flag.Cancel()
	return abandoned, cancelled
}
