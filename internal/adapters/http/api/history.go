package api

import (
	"context"
	"net/http"

	"github.com/okian/multielo/internal/domain/types"
)

// HistoryDependencies defines the interface for rating history queries.
type HistoryDependencies interface {
	History(ctx context.Context, id string) ([]types.HistoryEntry, error)
}

// HistoryHandler handles history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetHistory handles GET /history?player=ID requests. Without a
// player every snapshot is returned.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	entries, err := h.deps.History(r.Context(), r.URL.Query().Get("player"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
