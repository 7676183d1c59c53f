// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/multielo/internal/app"
	"github.com/okian/multielo/internal/domain/elo"
	"github.com/okian/multielo/internal/domain/model"
	"github.com/okian/multielo/internal/domain/tracker"
	"github.com/okian/multielo/internal/domain/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	MatchupDependencies
	LeaderboardDependencies
	PlayerDependencies
	HistoryDependencies
	PredictDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.RatingEntry

// Server wires HTTP routes for the rating API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	matchupsHandler    *MatchupsHandler
	leaderboardHandler *LeaderboardHandler
	playersHandler     *PlayersHandler
	historyHandler     *HistoryHandler
	predictHandler     *PredictHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		matchupsHandler:    NewMatchupsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		playersHandler:     NewPlayersHandler(deps),
		historyHandler:     NewHistoryHandler(deps),
		predictHandler:     NewPredictHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/matchups", MetricsMiddleware(s.matchupsHandler.HandlePostMatchup, "matchups"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/players/", MetricsMiddleware(s.playersHandler.HandleGetPlayer, "players"))
	mux.HandleFunc("/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePostPredict, "predict"))
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

// writeServiceError maps an error from the service layer to a response.
// Narrower sentinels are checked before the kinds they wrap.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	err = Wrap(op, err)
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidMatchup), errors.Is(err, elo.ErrDataShape):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, tracker.ErrParticipantNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, elo.ErrContractViolation):
		writeError(w, http.StatusInternalServerError, "contract_violation", err)
	case errors.Is(err, elo.ErrConstraintViolation):
		writeError(w, http.StatusUnprocessableEntity, "constraint_violation", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
