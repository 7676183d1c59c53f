package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	service "github.com/okian/multielo/internal/app"
)

// PlayerDependencies defines the interface for participant lookups.
type PlayerDependencies interface {
	Player(ctx context.Context, id, asOf string) (service.PlayerView, error)
}

// PlayersHandler handles participant requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPlayer handles GET /players/{id}?as_of=LABEL requests.
func (h *PlayersHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/players/")
	id, err := url.PathUnescape(raw)
	if err != nil || id == "" || strings.Contains(raw, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	view, err := h.deps.Player(r.Context(), id, r.URL.Query().Get("as_of"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
