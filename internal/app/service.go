// Package service hosts game sessions and implements the dependencies
// required by the HTTP API.
//
// Each session owns a selection gate and at most one match. Match
// transitions go through the pure reducer; the session interprets the
// outcomes: a won match raises the celebration flag and publishes a
// result to the standings pipeline, a reset clears the selection.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/troxeldj/greek-god-arena/internal/adapters/mq/queue"
	"github.com/troxeldj/greek-god-arena/internal/adapters/mq/worker"
	"github.com/troxeldj/greek-god-arena/internal/adapters/repository"
	"github.com/troxeldj/greek-god-arena/internal/domain/celebration"
	"github.com/troxeldj/greek-god-arena/internal/domain/dedupe"
	"github.com/troxeldj/greek-god-arena/internal/domain/match"
	"github.com/troxeldj/greek-god-arena/internal/domain/model"
	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
	"github.com/troxeldj/greek-god-arena/internal/domain/selection"
	"github.com/troxeldj/greek-god-arena/internal/domain/types"
	"github.com/troxeldj/greek-god-arena/pkg/logger"
	"github.com/troxeldj/greek-god-arena/pkg/metrics"
)

// Service implements the API dependencies for the arena.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	roster    *roster.Roster
	standings repository.Store
	sampler   match.Sampler

	// Results pipeline, created by Start.
	results *queue.InMemoryQueue
	pool    *worker.Pool

	// Configuration
	winningScore     int
	celebrationDelay time.Duration
	sessionTTL       time.Duration
	maxSessions      int
	actionCacheSize  int
	queueSize        int
	workerCount      int
	janitorInterval  time.Duration

	// State
	lifecycle sync.Mutex
	started   bool
	stopCh    chan struct{}
	janitorWG sync.WaitGroup

	now    func() time.Time
	logger logger.Logger
}

// New constructs a Service over r with default configuration.
func New(r *roster.Roster, opts ...Option) (*Service, error) {
	if r == nil {
		return nil, ErrInvalidRoster
	}

	s := &Service{
		sessions:         make(map[string]*session),
		roster:           r,
		winningScore:     match.DefaultThreshold,
		celebrationDelay: 2 * time.Second,
		sessionTTL:       30 * time.Minute,
		maxSessions:      10000,
		actionCacheSize:  256,
		queueSize:        1024,
		workerCount:      2,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sampler == nil {
		s.sampler = match.NewRandomSampler(0)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.janitorInterval == 0 {
		s.janitorInterval = max(min(s.sessionTTL/2, time.Minute), time.Second)
	}

	ids := make([]string, 0, r.Len())
	for _, c := range r.Contestants() {
		ids = append(ids, c.ID)
	}
	s.standings = repository.NewMemoryStore(repository.WithContestants(ids...))

	return s, nil
}

// Start launches the results workers and the session janitor.
// Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting arena service...")

	results := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, results, s.standings,
		worker.WithLogger(s.logger.Named("standings")))
	pool.Start(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.results = results
	s.pool = pool
	s.mu.Unlock()

	s.stopCh = make(chan struct{})
	s.janitorWG.Add(1)
	go s.janitor(ctx, s.stopCh)

	s.started = true
	s.logger.Info(ctx, "arena service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("winningScore", s.winningScore),
		logger.Duration("sessionTTL", s.sessionTTL),
	)
	return nil
}

// Stop drains the results pipeline and ends every session.
func (s *Service) Stop(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping arena service...")

	close(s.stopCh)
	s.janitorWG.Wait()

	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.results = nil
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		s.closeSession(sess)
	}
	metrics.UpdateActiveSessions(0)

	var err error
	if pool != nil {
		err = pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "arena service stopped")
	return err
}

// Roster returns the contestants in roster order.
func (s *Service) Roster(ctx context.Context) []roster.Contestant {
	return s.roster.Contestants()
}

// CreateSession opens an empty session.
func (s *Service) CreateSession(ctx context.Context) (types.SessionView, error) {
	sess := &session{
		id:      uuid.NewString(),
		actions: dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.actionCacheSize)),
	}
	sess.touch(s.now())
	sess.flag = celebration.New(s.celebrationDelay, celebration.WithOnExpire(func() {
		s.logger.Debug(context.Background(), "celebration over", logger.String("session_id", sess.id))
	}))

	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		// expired sessions may be holding the slots
		if s.Sweep(ctx) == 0 {
			return types.SessionView{}, ErrTooManySessions
		}
		s.mu.Lock()
		if len(s.sessions) >= s.maxSessions {
			s.mu.Unlock()
			return types.SessionView{}, ErrTooManySessions
		}
	}
	s.sessions[sess.id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(count)
	s.logger.Debug(ctx, "session created", logger.String("session_id", sess.id))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked(), nil
}

// Session returns the current view of a session.
func (s *Service) Session(ctx context.Context, id string) (types.SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return types.SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return types.SessionView{}, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess.viewLocked(), nil
}

// DeleteSession ends a session and cancels its pending celebration.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.closeSession(sess)
	metrics.UpdateActiveSessions(count)
	s.logger.Debug(ctx, "session deleted", logger.String("session_id", id))
	return nil
}

// Select passes a contestant through the session's selection gate. When the
// gate fills, a new match starts between the two picks in pick order.
func (s *Service) Select(ctx context.Context, id, contestantID, actionID string) (types.SessionView, error) {
	return s.apply(ctx, id, actionID, func(sess *session, v *types.SessionView) error {
		c, err := s.roster.Get(contestantID)
		if err != nil {
			return fmt.Errorf("select %q: %w", contestantID, err)
		}

		res := sess.gate.Select(c)
		switch res {
		case selection.Added:
			if a, b, ok := sess.gate.Pair(); ok {
				sess.ctrl = match.NewController(a, b, s.winningScore, s.sampler)
				sess.rounds = 0
				metrics.RecordMatchStarted()
				s.logger.Info(ctx, "match started",
					logger.String("session_id", sess.id),
					logger.String("a", a.ID),
					logger.String("b", b.ID),
				)
			}
		default:
			metrics.RecordSelectionRejected(res.String())
		}
		*v = sess.viewLocked()
		v.SelectResult = res.String()
		return nil
	})
}

// PlayRound samples an attribute and resolves one round of the session's
// match. It returns ErrNoMatch until two contestants are selected.
func (s *Service) PlayRound(ctx context.Context, id, actionID string) (types.SessionView, error) {
	return s.apply(ctx, id, actionID, func(sess *session, v *types.SessionView) error {
		if sess.ctrl == nil {
			return ErrNoMatch
		}

		out := sess.ctrl.PlayRound()
		state := sess.ctrl.State()
		switch out.Kind {
		case match.OutcomeContinued:
			sess.rounds++
			metrics.RecordRound(state.Last.String())
		case match.OutcomeMatchWon:
			sess.rounds++
			metrics.RecordRound(state.Last.String())
			s.matchWon(ctx, sess, state)
		}

		*v = sess.viewLocked()
		v.Outcome = &out
		return nil
	})
}

// Reset discards the session's selection and match. It is valid in any
// state, including before a match starts.
func (s *Service) Reset(ctx context.Context, id, actionID string) (types.SessionView, error) {
	return s.apply(ctx, id, actionID, func(sess *session, v *types.SessionView) error {
		abandoned, cancelled := sess.clearLocked()
		if abandoned {
			metrics.RecordMatchAbandoned()
		}
		if cancelled {
			metrics.RecordCelebrationCancelled()
		}

		*v = sess.viewLocked()
		v.Outcome = &match.Outcome{Kind: match.OutcomeReset}
		return nil
	})
}

// TopN returns the top n standings rows.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.standings.TopN(ctx, n)
}

// Rank returns the standings row of one contestant.
func (s *Service) Rank(ctx context.Context, contestantID string) (types.Entry, error) {
	return s.standings.Rank(ctx, contestantID)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.sessionTTL)

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.idleSince(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		s.closeSession(sess)
	}
	if len(expired) > 0 {
		metrics.RecordSessionsEvicted(len(expired))
		metrics.UpdateActiveSessions(count)
		s.logger.Info(ctx, "evicted idle sessions",
			logger.Int("evicted", len(expired)),
			logger.Int("remaining", count),
		)
	}
	return len(expired)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()

	s.mu.RLock()
	sessions := len(s.sessions)
	results := s.results
	s.mu.RUnlock()

	s.lifecycle.Lock()
	started := s.started
	s.lifecycle.Unlock()

	stats := map[string]interface{}{
		"started":          started,
		"sessions":         sessions,
		"maxSessions":      s.maxSessions,
		"rosterSize":       s.roster.Len(),
		"winningScore":     s.winningScore,
		"celebrationMs":    s.celebrationDelay.Milliseconds(),
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"standingsEntries": s.standings.Count(ctx),
	}
	if results != nil {
		stats["queueLength"] = results.Len(ctx)
	}
	metrics.UpdateActiveSessions(sessions)
	return stats
}

// apply runs fn against a session under its lock, after the action id
// check. A failed fn releases the action id so the client may retry.
func (s *Service) apply(ctx context.Context, id, actionID string, fn func(*session, *types.SessionView) error) (types.SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return types.SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return types.SessionView{}, ErrSessionNotFound
	}
	sess.touch(s.now())

	if actionID != "" && sess.actions.SeenAndRecord(ctx, actionID) {
		metrics.RecordActionDuplicate()
		s.logger.Debug(ctx, "duplicate action ignored",
			logger.String("session_id", sess.id),
			logger.String("action_id", actionID),
		)
		v := sess.viewLocked()
		v.Duplicate = true
		return v, nil
	}

	var v types.SessionView
	if err := fn(sess, &v); err != nil {
		if actionID != "" {
			sess.actions.Unrecord(ctx, actionID)
		}
		return types.SessionView{}, err
	}
	return v, nil
}

// matchWon records a finished match. Caller holds sess.mu.
func (s *Service) matchWon(ctx context.Context, sess *session, state match.State) {
	winner, loser := state.A, state.B
	winnerScore, loserScore := state.ScoreA, state.ScoreB
	if state.Winner == match.ResultB {
		winner, loser = loser, winner
		winnerScore, loserScore = loserScore, winnerScore
	}

	sess.lastWinner = winner.ID
	sess.flag.Start()
	metrics.RecordMatchWon(winner.ID)

	result := model.MatchResult{
		MatchID:     uuid.NewString(),
		SessionID:   sess.id,
		WinnerID:    winner.ID,
		LoserID:     loser.ID,
		WinnerScore: winnerScore,
		LoserScore:  loserScore,
		Rounds:      sess.rounds,
		FinishedAt:  s.now(),
	}
	s.logger.Info(ctx, "match won",
		logger.String("session_id", sess.id),
		logger.String("match_id", result.MatchID),
		logger.String("winner_id", winner.ID),
		logger.String("loser_id", loser.ID),
		logger.Int("rounds", result.Rounds),
	)
	s.publish(ctx, result)
}

// publish hands a result to the standings workers without blocking.
func (s *Service) publish(ctx context.Context, result model.MatchResult) {
	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()

	if results == nil {
		metrics.RecordQueueDropped("not_started")
		s.logger.Warn(ctx, "standings pipeline not running; result dropped",
			logger.String("match_id", result.MatchID))
		return
	}
	if err := results.Enqueue(context.WithoutCancel(ctx), result); err != nil {
		level := s.logger.Warn
		if !errors.Is(err, queue.ErrFull) && !errors.Is(err, queue.ErrClosed) {
			level = s.logger.Error
		}
		level(ctx, "match result dropped",
			logger.String("match_id", result.MatchID),
			logger.Error(err),
		)
	}
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) closeSession(sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	if sess.flag.Cancel() {
		metrics.RecordCelebrationCancelled()
	}
}

func (s *Service) janitor(ctx context.Context, stop <-chan struct{}) {
	defer s.janitorWG.Done()
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
