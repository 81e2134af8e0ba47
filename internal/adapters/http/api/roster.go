package api

import (
	"context"
	"net/http"

	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
)

// RosterDependencies defines the interface for roster reads.
type RosterDependencies interface {
	Roster(ctx context.Context) []roster.Contestant
}

// RosterHandler handles roster requests.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

// HandleGetRoster handles GET /roster requests.
func (h *RosterHandler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Roster(r.Context()))
}
