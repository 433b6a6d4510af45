package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/lanes/internal/app"
	"github.com/okian/lanes/internal/domain/types"
)

// RankingsDependencies defines the interface for ranking reads.
type RankingsDependencies interface {
	Rankings(ctx context.Context, q service.RankingQuery) (types.Rankings, error)
}

// RankingsHandler handles ranking requests.
type RankingsHandler struct {
	deps RankingsDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleGetRankings handles
// GET /rankings?event=E&teams=1:2024,2:2023&top_n=N&scoring=unscored&exclude=3,4.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := parseRankingQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Rankings(r.Context(), q)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseRankingQuery(r *http.Request) (service.RankingQuery, error) {
	v := r.URL.Query()
	q := service.RankingQuery{
		Event:   strings.TrimSpace(v.Get("event")),
		Mode:    strings.TrimSpace(v.Get("scoring")),
		Exclude: v.Get("exclude"),
	}
	if q.Event == "" {
		return q, errors.New("missing event")
	}
	for _, key := range strings.Split(v.Get("teams"), ",") {
		if key = strings.TrimSpace(key); key != "" {
			q.Teams = append(q.Teams, key)
		}
	}
	if s := v.Get("top_n"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, fmt.Errorf("invalid top_n %q", s)
		}
		q.TopN = n
	}
	return q, nil
}
