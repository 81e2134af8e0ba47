// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/troxeldj/greek-god-arena/internal/adapters/repository"
	service "github.com/troxeldj/greek-god-arena/internal/app"
	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
	"github.com/troxeldj/greek-god-arena/internal/domain/types"
)

// maxBodyBytes bounds request bodies; every request shape is tiny.
const maxBodyBytes = 1 << 16

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RosterDependencies
	SessionDependencies
	StandingsDependencies
	RankDependencies
}

// Entry mirrors the read shape returned by standings queries.
type Entry = types.Entry

// Server wires HTTP routes for the game API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	rosterHandler    *RosterHandler
	sessionsHandler  *SessionsHandler
	standingsHandler *StandingsHandler
	rankHandler      *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxStandingsLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		rosterHandler:    NewRosterHandler(deps),
		sessionsHandler:  NewSessionsHandler(deps),
		standingsHandler: NewStandingsHandler(deps, maxStandingsLimit),
		rankHandler:      NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /roster", MetricsMiddleware(s.rosterHandler.HandleGetRoster, "roster"))

	sh := s.sessionsHandler
	mux.HandleFunc("POST /sessions", MetricsMiddleware(sh.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(sh.HandleGet, "session"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(sh.HandleDelete, "session"))
	mux.HandleFunc("POST /sessions/{id}/select", MetricsMiddleware(sh.HandleSelect, "select"))
	mux.HandleFunc("POST /sessions/{id}/rounds", MetricsMiddleware(sh.HandlePlayRound, "rounds"))
	mux.HandleFunc("POST /sessions/{id}/reset", MetricsMiddleware(sh.HandleReset, "reset"))

	mux.HandleFunc("GET /standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("GET /standings/{contestant_id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, roster.ErrUnknownContestant), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "contestant_not_found"
	case errors.Is(err, service.ErrNoMatch):
		return http.StatusConflict, "no_match"
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusTooManyRequests, "too_many_sessions"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeBody reads an optional JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
