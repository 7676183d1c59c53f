// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the batch CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/multielo/internal/adapters/ingest"
	"github.com/okian/multielo/internal/adapters/repository"
	"github.com/okian/multielo/internal/domain/dedupe"
	"github.com/okian/multielo/internal/domain/elo"
	"github.com/okian/multielo/internal/domain/model"
	"github.com/okian/multielo/internal/domain/tracker"
	"github.com/okian/multielo/internal/domain/types"
	"github.com/okian/multielo/pkg/logger"
	"github.com/okian/multielo/pkg/metrics"
)

// Simulation trial defaults for Predict.
const (
	DefaultSimulationRuns    = 10_000
	DefaultMaxSimulationRuns = 100_000
)

// Submission statuses.
const (
	StatusApplied   = "applied"
	StatusDuplicate = "duplicate"
	StatusSkipped   = "skipped"
)

// SubmitResult describes what happened to a submitted matchup.
type SubmitResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PlayerView is one participant's standing, optionally as of a label.
type PlayerView struct {
	types.RatingEntry
	AsOf       string   `json:"as_of,omitempty"`
	RatingAsOf *float64 `json:"rating_as_of,omitempty"`
}

// Prediction holds the expected scores and simulated place probabilities of
// a hypothetical matchup. Places[i][j] is the probability that Players[i]
// finishes in place j.
type Prediction struct {
	Players  []string    `json:"players"`
	Ratings  []float64   `json:"ratings"`
	Expected []float64   `json:"expected"`
	Places   [][]float64 `json:"places"`
	Runs     int         `json:"runs"`
}

// Service owns the rating engine, the tracker and persistence. Mutations
// are serialized by one mutex.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine  *elo.Engine
	tracker *tracker.Tracker
	deduper dedupe.Deduper
	store   *repository.StateStore

	// Configuration
	k, d, scoreBase, logBase float64
	initialRating            float64
	keepHistory              bool
	labelField               string
	dedupeSize               int
	maxLimit                 int
	simulationRuns           int
	maxSimulationRuns        int

	started bool
	logger  logger.Logger
}

// New constructs a Service and its rating engine.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		k:                 elo.DefaultK,
		d:                 elo.DefaultD,
		scoreBase:         elo.DefaultScoreBase,
		logBase:           elo.DefaultLogBase,
		initialRating:     tracker.DefaultInitialRating,
		keepHistory:       true,
		labelField:        ingest.DefaultLabelField,
		dedupeSize:        dedupe.DefaultMaxSize,
		maxLimit:          100,
		simulationRuns:    DefaultSimulationRuns,
		maxSimulationRuns: DefaultMaxSimulationRuns,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.simulationRuns > s.maxSimulationRuns {
		return nil, fmt.Errorf("%w: default simulation runs %d exceed the maximum %d",
			elo.ErrConstraintViolation, s.simulationRuns, s.maxSimulationRuns)
	}

	engine, err := elo.New(
		elo.WithK(s.k),
		elo.WithD(s.d),
		elo.WithScoreBase(s.scoreBase),
		elo.WithLogBase(s.logBase),
		elo.WithLogger(s.logger.Named("elo")),
	)
	if err != nil {
		return nil, fmt.Errorf("create rating engine: %w", err)
	}
	s.engine = engine
	return s, nil
}

// Start loads persisted state, if any, and builds the tracker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting rating service...")

	retention := tracker.RetainFull
	if !s.keepHistory {
		retention = tracker.RetainLatest
	}
	opts := []tracker.Option{
		tracker.WithInitialRating(s.initialRating),
		tracker.WithRetention(retention),
		tracker.WithLabelField(s.labelField),
		tracker.WithLogger(s.logger.Named("tracker")),
	}

	if s.store != nil {
		st, err := s.store.Load(ctx)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.logger.Info(ctx, "no persisted state, starting empty")
		case err != nil:
			return err
		default:
			if st.LabelField != "" && st.LabelField != s.labelField {
				return fmt.Errorf("%w: persisted state uses %q, configured %q",
					tracker.ErrLabelFieldMismatch, st.LabelField, s.labelField)
			}
			opts = append(opts, tracker.WithParticipants(st.Participants...))
		}
	}

	tr, err := tracker.New(s.engine, opts...)
	if err != nil {
		return fmt.Errorf("create tracker: %w", err)
	}
	s.tracker = tr
	s.deduper = dedupe.NewInMemory(dedupe.WithMaxSize(s.dedupeSize))

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("participants", tr.Len()),
		logger.String("labelField", s.labelField),
		logger.Bool("persistent", s.store != nil),
	)
	return nil
}

// Stop persists the current state and closes the state store.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping rating service...")

	var errs []error
	if s.store != nil {
		errs = append(errs, s.persist(ctx), s.store.Close())
	}
	s.started = false
	s.logger.Info(ctx, "rating service stopped")
	return errors.Join(errs...)
}

// Submit applies one matchup. Matchups without an ID get a generated one;
// a matchup whose ID was already applied is reported as a duplicate.
func (s *Service) Submit(ctx context.Context, m model.Matchup) (SubmitResult, error) {
	if err := m.Validate(); err != nil {
		return SubmitResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return SubmitResult{}, ErrNotStarted
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	res := SubmitResult{ID: m.ID}

	if s.deduper.SeenAndRecord(ctx, m.ID) {
		metrics.RecordMatchupDuplicate()
		s.logger.Debug(ctx, "duplicate matchup", logger.String("id", m.ID))
		res.Status = StatusDuplicate
		return res, nil
	}

	applied, err := s.tracker.ProcessMatchup(ctx, s.labelField, m)
	if err != nil {
		s.deduper.Unrecord(ctx, m.ID)
		return SubmitResult{}, err
	}
	res.Status = StatusSkipped
	if applied {
		res.Status = StatusApplied
		s.persistOrLog(ctx)
	}
	return res, nil
}

// SubmitBatch applies a batch in label order, skipping matchups whose ID
// was already applied. On error the matchups before the failing one stay
// applied.
func (s *Service) SubmitBatch(ctx context.Context, b ingest.Batch) (tracker.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return tracker.BatchResult{}, ErrNotStarted
	}

	// Sort here so the tracker's own stable sort keeps this order and the
	// applied prefix is known on failure.
	sorted := slices.Clone(b.Matchups)
	slices.SortStableFunc(sorted, func(a, b model.Matchup) int {
		return tracker.CompareLabels(a.Label, b.Label)
	})

	fresh := make([]model.Matchup, 0, len(sorted))
	duplicates := 0
	for _, m := range sorted {
		if m.ID != "" && s.deduper.SeenAndRecord(ctx, m.ID) {
			metrics.RecordMatchupDuplicate()
			duplicates++
			continue
		}
		fresh = append(fresh, m)
	}

	res, err := s.tracker.ProcessBatch(ctx, b.LabelField, fresh)
	if err != nil {
		consumed := res.Processed + res.Skipped
		for _, m := range fresh[consumed:] {
			if m.ID != "" {
				s.deduper.Unrecord(ctx, m.ID)
			}
		}
	}
	if res.Processed > 0 {
		s.persistOrLog(ctx)
	}
	s.logger.Info(ctx, "batch submitted",
		logger.Int("matchups", len(b.Matchups)),
		logger.Int("processed", res.Processed),
		logger.Int("skipped", res.Skipped),
		logger.Int("duplicates", duplicates),
	)
	return res, err
}

// Leaderboard returns the top limit participants by rating.
func (s *Service) Leaderboard(_ context.Context, limit int) ([]types.RatingEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	limit = min(limit, s.maxLimit)

	tr, err := s.currentTracker()
	if err != nil {
		return nil, err
	}
	entries := tr.CurrentRatings()
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Player returns a participant's standing. When asOf is not empty the
// rating as of that label is included; it is absent if the participant had
// no rating yet.
func (s *Service) Player(_ context.Context, id, asOf string) (PlayerView, error) {
	tr, err := s.currentTracker()
	if err != nil {
		return PlayerView{}, err
	}
	p, err := tr.Participant(id)
	if err != nil {
		return PlayerView{}, err
	}

	entry, err := tr.Standing(id)
	if err != nil {
		return PlayerView{}, err
	}
	view := PlayerView{RatingEntry: entry, AsOf: asOf}
	if asOf != "" {
		if snap, ok := p.SnapshotAsOf(asOf); ok {
			view.RatingAsOf = &snap.Rating
		}
	}
	return view, nil
}

// History returns rating snapshots in the order they were written, for one
// participant or, with an empty id, for everybody.
func (s *Service) History(_ context.Context, id string) ([]types.HistoryEntry, error) {
	tr, err := s.currentTracker()
	if err != nil {
		return nil, err
	}
	all := tr.History()
	if id == "" {
		return all, nil
	}
	if _, err := tr.Participant(id); err != nil {
		return nil, err
	}
	out := make([]types.HistoryEntry, 0)
	for _, e := range all {
		if e.PlayerID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// Predict estimates the outcome of a matchup between players. Unknown
// players are rated at the initial rating. runs <= 0 uses the configured
// default and runs above the configured maximum are rejected; a nil seed
// draws a fresh one.
func (s *Service) Predict(ctx context.Context, players []string, runs int, seed *int64) (Prediction, error) {
	tr, err := s.currentTracker()
	if err != nil {
		return Prediction{}, err
	}
	if len(players) < 2 {
		return Prediction{}, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidQuery, len(players))
	}
	if runs <= 0 {
		runs = s.simulationRuns
	}
	if runs > s.maxSimulationRuns {
		return Prediction{}, fmt.Errorf("%w: %d simulation runs exceed the maximum %d", ErrInvalidQuery, runs, s.maxSimulationRuns)
	}

	ratings := make([]float64, len(players))
	seen := make(map[string]struct{}, len(players))
	for i, id := range players {
		if _, dup := seen[id]; dup {
			return Prediction{}, fmt.Errorf("%w: %q listed twice", ErrInvalidQuery, id)
		}
		seen[id] = struct{}{}
		ratings[i] = s.initialRating
		if p, err := tr.Participant(id); err == nil {
			ratings[i] = p.Rating
		}
	}

	expected, err := s.engine.ExpectedScores(ratings)
	if err != nil {
		return Prediction{}, err
	}
	var simOpts []elo.SimOption
	if seed != nil {
		simOpts = append(simOpts, elo.WithSeed(*seed))
	}
	places, err := s.engine.SimulateWinProbabilities(ratings, runs, simOpts...)
	if err != nil {
		return Prediction{}, err
	}
	s.logger.Debug(ctx, "prediction computed",
		logger.Int("players", len(players)),
		logger.Int("runs", runs),
	)
	return Prediction{
		Players:  slices.Clone(players),
		Ratings:  ratings,
		Expected: expected,
		Places:   places,
		Runs:     runs,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"k":              s.engine.K(),
		"d":              s.engine.D(),
		"logBase":        s.engine.LogBase(),
		"initialRating":  s.initialRating,
		"keepHistory":    s.keepHistory,
		"labelField":     s.labelField,
		"dedupeSize":     s.dedupeSize,
		"simulationRuns": s.simulationRuns,
		"maxSimRuns":     s.maxSimulationRuns,
		"persistent":     s.store != nil,
	}
	if s.started {
		n := s.tracker.Len()
		stats["participants"] = n
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateParticipantsTotal(n)
	}
	return stats
}

func (s *Service) currentTracker() (*tracker.Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.tracker, nil
}

// persist must be called with s.mu held.
func (s *Service) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, repository.State{
		LabelField:   s.tracker.LabelField(),
		Participants: s.tracker.Participants(),
	})
}

// persistOrLog saves after a change. A failed save does not undo the
// change; the state is saved again on the next change and on Stop.
func (s *Service) persistOrLog(ctx context.Context) {
	if err := s.persist(ctx); err != nil {
		s.logger.Error(ctx, "failed to persist state", logger.Error(err))
	}
}
