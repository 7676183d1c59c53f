package api

import (
	"context"
	"net/http"

	service "github.com/okian/multielo/internal/app"
)

// PredictDependencies defines the interface for matchup predictions.
type PredictDependencies interface {
	Predict(ctx context.Context, players []string, runs int, seed *int64) (service.Prediction, error)
}

// predictRequest is the body of POST /predict.
type predictRequest struct {
	Players []string `json:"players"`
	Runs    int      `json:"runs,omitempty"`
	Seed    *int64   `json:"seed,omitempty"`
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePostPredict handles POST /predict requests.
func (h *PredictHandler) HandlePostPredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_predict"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	var req predictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Runs < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	pred, err := h.deps.Predict(r.Context(), req.Players, req.Runs, req.Seed)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}
