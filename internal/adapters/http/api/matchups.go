package api

import (
	"context"
	"net/http"

	service "github.com/okian/multielo/internal/app"
	"github.com/okian/multielo/internal/domain/model"
)

// MatchupDependencies defines the interface for matchup submission.
type MatchupDependencies interface {
	Submit(ctx context.Context, m model.Matchup) (service.SubmitResult, error)
}

// MatchupsHandler handles matchup submissions.
type MatchupsHandler struct {
	deps MatchupDependencies
}

// NewMatchupsHandler creates a new matchups handler.
func NewMatchupsHandler(deps MatchupDependencies) *MatchupsHandler {
	return &MatchupsHandler{deps: deps}
}

// HandlePostMatchup handles POST /matchups requests. An applied or skipped
// matchup answers 202, a duplicate 200.
func (h *MatchupsHandler) HandlePostMatchup(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_matchup"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	var req model.Matchup
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	status := http.StatusAccepted
	if res.Status == service.StatusDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}
