package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/troxeldj/greek-god-arena/internal/domain/types"
)

// SessionDependencies defines the session operations the handlers drive.
type SessionDependencies interface {
	CreateSession(ctx context.Context) (types.SessionView, error)
	Session(ctx context.Context, id string) (types.SessionView, error)
	DeleteSession(ctx context.Context, id string) error
	Select(ctx context.Context, id, contestantID, actionID string) (types.SessionView, error)
	PlayRound(ctx context.Context, id, actionID string) (types.SessionView, error)
	Reset(ctx context.Context, id, actionID string) (types.SessionView, error)
}

// selectRequest mirrors the OpenAPI schema for POST /sessions/{id}/select.
type selectRequest struct {
	ContestantID string `json:"contestant_id"`
	ActionID     string `json:"action_id"`
}

func (s selectRequest) validate() error {
	if strings.TrimSpace(s.ContestantID) == "" {
		return errors.New("missing contestant_id")
	}
	return nil
}

// actionRequest is the optional body of round and reset calls.
type actionRequest struct {
	ActionID string `json:"action_id"`
}

// SessionsHandler handles session requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	view, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/sessions/"+view.SessionID)
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /sessions/{id} requests.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	view, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /sessions/{id} requests.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSelect handles POST /sessions/{id}/select requests.
func (h *SessionsHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	const op = "api.select"
	var req selectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.Select(r.Context(), r.PathValue("id"), req.ContestantID, req.ActionID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandlePlayRound handles POST /sessions/{id}/rounds requests.
func (h *SessionsHandler) HandlePlayRound(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, "api.play_round", h.deps.PlayRound)
}

// HandleReset handles POST /sessions/{id}/reset requests.
func (h *SessionsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, "api.reset", h.deps.Reset)
}

func (h *SessionsHandler) handleAction(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(ctx context.Context, id, actionID string) (types.SessionView, error),
) {
	var req actionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := fn(r.Context(), r.PathValue("id"), req.ActionID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
