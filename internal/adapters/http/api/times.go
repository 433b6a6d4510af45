package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/lanes/internal/app"
	"github.com/okian/lanes/internal/domain/model"
)

// TimesDependencies defines what the times handler needs.
type TimesDependencies interface {
	Submit(ctx context.Context, raw model.RawRecord) (service.SubmitStatus, error)
	Delete(ctx context.Context, id model.RecordID) error
}

// TimesHandler handles time record writes.
type TimesHandler struct {
	deps TimesDependencies
}

// NewTimesHandler creates a new times handler.
func NewTimesHandler(deps TimesDependencies) *TimesHandler {
	return &TimesHandler{deps: deps}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostTime handles POST /times requests.
func (h *TimesHandler) HandlePostTime(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_time"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var raw model.RawRecord
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	status, err := h.deps.Submit(r.Context(), raw)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	if status == service.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: string(status), Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: string(status)})
}

// HandleDeleteTime handles DELETE /times/{id} requests.
func (h *TimesHandler) HandleDeleteTime(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_time"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/times/")
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.Delete(r.Context(), model.RecordID(id)); err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
