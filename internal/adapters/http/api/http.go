// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/lanes/internal/adapters/repository"
	service "github.com/okian/lanes/internal/app"
	"github.com/okian/lanes/internal/domain/exclusion"
	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/internal/engine"
	"github.com/okian/lanes/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TimesDependencies
	RankingsDependencies
	ChoicesDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	timesHandler    *TimesHandler
	rankingsHandler *RankingsHandler
	choicesHandler  *ChoicesHandler
	logger          logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(statsProvider),
		statsHandler:    NewStatsHandler(statsProvider),
		timesHandler:    NewTimesHandler(deps),
		rankingsHandler: NewRankingsHandler(deps),
		choicesHandler:  NewChoicesHandler(deps),
		logger:          logger.Get().Named("http"),
	}
}

// Register attaches all HTTP routes to mux. Every route is wrapped with
// request ids, access logging and metrics.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.Handle(pattern, RequestID(AccessLog(s.logger, MetricsMiddleware(h, endpoint))))
	}
	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/times", "times", s.timesHandler.HandlePostTime)
	route("/times/", "times_id", s.timesHandler.HandleDeleteTime)
	route("/rankings", "rankings", s.rankingsHandler.HandleGetRankings)
	route("/team-seasons", "team_seasons", s.choicesHandler.HandleTeamSeasons)
	route("/events", "events", s.choicesHandler.HandleEvents)
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

// badRequestKinds are upstream error kinds caused by the client's input.
var badRequestKinds = []error{
	ErrBadRequest,
	model.ErrInvalidRecord,
	model.ErrInvalidTeamSeason,
	model.ErrUnknownEvent,
	exclusion.ErrInvalidID,
	engine.ErrInvalidTopN,
	engine.ErrInvalidMode,
	engine.ErrNoTeamSeason,
	service.ErrUnknownTeamSeason,
}

// writeServiceError translates upstream error kinds to a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, kind := range badRequestKinds {
		if errors.Is(err, kind) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
