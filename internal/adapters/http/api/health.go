package api

import (
	"net/http"
	"strings"

	"github.com/okian/lanes/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthStatus struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Queued  int    `json:"queued"`
}

// HealthHandler serves /healthz: Prometheus metrics by default, a short
// JSON status for clients that accept application/json.
type HealthHandler struct {
	stats   StatsProvider
	metrics http.Handler
}

// NewHealthHandler creates a health handler reading readiness from stats.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{
		stats:   stats,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests. A service that has not
// started reports 503 in JSON mode.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Accept"), "application/json") {
		h.metrics.ServeHTTP(w, r)
		return
	}
	stats := h.stats.GetStats()
	started, _ := stats["started"].(bool)
	if !started {
		writeJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "starting"})
		return
	}
	records, _ := stats["records"].(int)
	queued, _ := stats["queueLength"].(int)
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok", Records: records, Queued: queued})
}
