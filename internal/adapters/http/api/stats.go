package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider reports service counters for GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service counters, stamped with the time they were read.
type StatsHandler struct {
	provider StatsProvider
	now      func() time.Time
}

func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, now: time.Now}
}

func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	body := maps.Clone(h.provider.GetStats())
	if body == nil {
		body = map[string]interface{}{}
	}
	body["generated_at"] = h.now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, body)
}
