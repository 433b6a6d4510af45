package api

import (
	"net/http"
	"time"
)

// StatsProvider reports ingestion and store counters.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves a snapshot of the service counters.
type StatsHandler struct {
	statsProvider StatsProvider
	startedAt     time.Time
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, startedAt: time.Now()}
}

// HandleStats handles GET /stats requests. The provider's counters are
// returned alongside the handler uptime and the request id.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	src := h.statsProvider.GetStats()
	out := make(map[string]interface{}, len(src)+2)
	for k, v := range src {
		out[k] = v
	}
	out["uptimeSeconds"] = int64(time.Since(h.startedAt).Seconds())
	if id := RequestIDFrom(r.Context()); id != "" {
		out["requestId"] = id
	}
	writeJSON(w, http.StatusOK, out)
}
