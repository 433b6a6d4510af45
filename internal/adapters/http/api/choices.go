package api

import (
	"context"
	"net/http"

	"github.com/okian/lanes/internal/domain/types"
)

// ChoicesDependencies lists what a client can select from.
type ChoicesDependencies interface {
	TeamSeasons(ctx context.Context) ([]types.TeamSeasonChoice, error)
	Events(ctx context.Context) []types.EventChoice
}

// ChoicesHandler serves selection lists.
type ChoicesHandler struct {
	deps ChoicesDependencies
}

// NewChoicesHandler creates a new choices handler.
func NewChoicesHandler(deps ChoicesDependencies) *ChoicesHandler {
	return &ChoicesHandler{deps: deps}
}

// HandleTeamSeasons handles GET /team-seasons requests.
func (h *ChoicesHandler) HandleTeamSeasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	choices, err := h.deps.TeamSeasons(r.Context())
	if err != nil {
		writeServiceError(w, Wrap("api.get_team_seasons", err))
		return
	}
	writeJSON(w, http.StatusOK, choices)
}

// HandleEvents handles GET /events requests.
func (h *ChoicesHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Events(r.Context()))
}
