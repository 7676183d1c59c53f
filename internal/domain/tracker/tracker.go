// Package tracker maintains a population of rated participants over a
// sequence of labelled matchups.
//
// The tracker resolves participant IDs, creates newcomers with the initial
// rating, applies the engine's rating changes in label order and keeps each
// participant's rating history under the configured retention policy.
package tracker

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/multielo/internal/domain/elo"
	"github.com/okian/multielo/internal/domain/model"
	"github.com/okian/multielo/internal/domain/types"
	"github.com/okian/multielo/pkg/logger"
	"github.com/okian/multielo/pkg/metrics"
)

// Rater computes the rating changes of one matchup.
type Rater interface {
	Rate(ctx context.Context, ratings []float64, order []int) (elo.Result, error)
}

// BatchResult counts what ProcessBatch did.
type BatchResult struct {
	Processed int
	Skipped   int
}

// Tracker holds every participant ever seen. It is safe for concurrent use;
// all mutations are serialized.
type Tracker struct {
	mu            sync.RWMutex
	engine        Rater
	initialRating float64
	retention     Retention
	labelField    string
	logger        logger.Logger

	participants map[string]*Participant
	order        []*Participant // creation order
	seq          uint64
	record       func(*History, Snapshot)
	seed         []Participant
}

// New creates a tracker that rates matchups with engine.
func New(engine Rater, opts ...Option) (*Tracker, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	t := &Tracker{
		engine:        engine,
		initialRating: DefaultInitialRating,
		retention:     RetainFull,
		logger:        logger.Nop(),
		participants:  make(map[string]*Participant),
	}
	for _, opt := range opts {
		opt(t)
	}

	switch t.retention {
	case RetainFull:
		t.record = (*History).AppendSnapshot
	case RetainLatest:
		t.record = (*History).ReplaceLatestSnapshot
	default:
		return nil, fmt.Errorf("%w: unknown retention policy %d", elo.ErrConstraintViolation, t.retention)
	}

	for _, p := range t.seed {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: seeded participant has an empty id", elo.ErrConstraintViolation)
		}
		if _, ok := t.participants[p.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, p.ID)
		}
		cp := p.clone()
		t.participants[p.ID] = &cp
		t.order = append(t.order, &cp)
		for _, s := range cp.History.entries {
			t.seq = max(t.seq, s.Seq+1)
		}
	}
	t.seed = nil
	metrics.UpdateParticipantsTotal(len(t.order))
	return t, nil
}

// LabelField returns the event label field name, empty until fixed.
func (t *Tracker) LabelField() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.labelField
}

// Len returns the number of participants.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// ProcessBatch applies matchups in label order. Matchups with equal labels
// keep their batch order. Processing stops at the first failing matchup;
// the ones before it stay applied.
func (t *Tracker) ProcessBatch(ctx context.Context, labelField string, matchups []model.Matchup) (BatchResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res BatchResult
	if err := t.fixLabelField(labelField); err != nil {
		return res, err
	}

	sorted := slices.Clone(matchups)
	slices.SortStableFunc(sorted, func(a, b model.Matchup) int {
		return CompareLabels(a.Label, b.Label)
	})

	for i, m := range sorted {
		applied, err := t.apply(ctx, m)
		if err != nil {
			return res, fmt.Errorf("matchup %d (%s %q): %w", i, t.labelField, m.Label, err)
		}
		if applied {
			res.Processed++
		} else {
			res.Skipped++
		}
	}

	t.logger.Info(ctx, "batch processed",
		logger.Int("processed", res.Processed),
		logger.Int("skipped", res.Skipped),
		logger.Int("participants", len(t.order)),
	)
	return res, nil
}

// ProcessMatchup applies a single matchup. It reports false when the
// matchup names no participants and was skipped.
func (t *Tracker) ProcessMatchup(ctx context.Context, labelField string, m model.Matchup) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.fixLabelField(labelField); err != nil {
		return false, err
	}
	return t.apply(ctx, m)
}

// GetOrCreateParticipant returns a copy of the participant with id, creating
// it with the initial rating when it does not exist yet. The bool reports
// whether it was created.
func (t *Tracker) GetOrCreateParticipant(ctx context.Context, id, label string) (*Participant, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, created := t.getOrCreate(ctx, id, label)
	cp := p.clone()
	return &cp, created
}

// Participant returns a copy of the participant with id.
func (t *Tracker) Participant(id string) (Participant, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.participants[id]
	if !ok {
		return Participant{}, fmt.Errorf("%w: %q", ErrParticipantNotFound, id)
	}
	return p.clone(), nil
}

// RatingAsOf returns the participant's rating as of label, or def when the
// participant is unknown or had no rating yet.
func (t *Tracker) RatingAsOf(id, label string, def float64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.participants[id]
	if !ok {
		return def
	}
	return p.RatingAsOf(label, def)
}

// CurrentRatings returns the ranked table, highest rating first. Equal
// ratings keep creation order.
func (t *Tracker) CurrentRatings() []types.RatingEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ps := make([]Participant, len(t.order))
	for i, p := range t.order {
		ps[i] = *p
	}
	slices.SortStableFunc(ps, ByRating)

	out := make([]types.RatingEntry, len(ps))
	for i, p := range ps {
		out[i] = types.RatingEntry{
			Rank:     i + 1,
			PlayerID: p.ID,
			Games:    p.Games,
			Rating:   p.Rating,
		}
	}
	return out
}

// Standing returns one participant's leaderboard entry. Its rank matches
// CurrentRatings without sorting the table.
func (t *Tracker) Standing(id string) (types.RatingEntry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.participants[id]
	if !ok {
		return types.RatingEntry{}, fmt.Errorf("%w: %q", ErrParticipantNotFound, id)
	}
	rank := 1
	ahead := true // participants created before p win rating ties
	for _, q := range t.order {
		if q == p {
			ahead = false
			continue
		}
		if q.Rating > p.Rating || (ahead && q.Rating == p.Rating) {
			rank++
		}
	}
	return types.RatingEntry{Rank: rank, PlayerID: p.ID, Games: p.Games, Rating: p.Rating}, nil
}

// History returns every labelled snapshot of every participant in the order
// the snapshots were written.
func (t *Tracker) History() []types.HistoryEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	type seqEntry struct {
		seq uint64
		e   types.HistoryEntry
	}
	var all []seqEntry
	for _, p := range t.order {
		for _, s := range p.History.entries {
			if s.Label == "" {
				continue
			}
			all = append(all, seqEntry{seq: s.Seq, e: types.HistoryEntry{PlayerID: p.ID, Label: s.Label, Rating: s.Rating}})
		}
	}
	slices.SortStableFunc(all, func(a, b seqEntry) int { return cmp.Compare(a.seq, b.seq) })

	out := make([]types.HistoryEntry, len(all))
	for i, se := range all {
		out[i] = se.e
	}
	return out
}

// Participants returns copies of all participants in creation order.
func (t *Tracker) Participants() []Participant {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Participant, len(t.order))
	for i, p := range t.order {
		out[i] = p.clone()
	}
	return out
}

func (t *Tracker) fixLabelField(field string) error {
	if field == "" {
		return fmt.Errorf("%w: label field is required", elo.ErrConstraintViolation)
	}
	if t.labelField == "" {
		t.labelField = field
		return nil
	}
	if t.labelField != field {
		return fmt.Errorf("%w: tracker uses %q, got %q", ErrLabelFieldMismatch, t.labelField, field)
	}
	return nil
}

// apply rates one matchup. Ratings are computed before any participant is
// created, so a rejected matchup leaves the tracker untouched.
func (t *Tracker) apply(ctx context.Context, m model.Matchup) (bool, error) {
	ids, order := m.Participants()
	if len(ids) == 0 {
		metrics.RecordMatchupSkipped()
		t.logger.Debug(ctx, "matchup skipped", logger.String("label", m.Label))
		return false, nil
	}
	if len(ids) == 1 {
		return false, fmt.Errorf("%w: matchup has a single participant %q", elo.ErrConstraintViolation, ids[0])
	}

	ratings := make([]float64, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			return false, fmt.Errorf("%w: %q appears more than once", elo.ErrConstraintViolation, id)
		}
		seen[id] = struct{}{}
		ratings[i] = t.initialRating
		if p, ok := t.participants[id]; ok {
			ratings[i] = p.Rating
		}
	}

	res, err := t.engine.Rate(ctx, ratings, order)
	if err != nil {
		return false, err
	}

	for i, id := range ids {
		p, _ := t.getOrCreate(ctx, id, m.Label)
		p.Rating = res.Ratings[i]
		p.Games++
		t.record(&p.History, t.snapshot(m.Label, p.Rating, SourceEvent))
		metrics.RecordRatingUpdate()
		t.logger.Debug(ctx, "rating updated",
			logger.String("participant", id),
			logger.String("label", m.Label),
			logger.Float64("before", ratings[i]),
			logger.Float64("after", p.Rating),
		)
	}

	metrics.RecordMatchupProcessed()
	t.logger.Debug(ctx, "matchup processed",
		logger.String("id", m.ID),
		logger.String("label", m.Label),
		logger.Int("participants", len(ids)),
	)
	return true, nil
}

func (t *Tracker) getOrCreate(ctx context.Context, id, label string) (*Participant, bool) {
	if p, ok := t.participants[id]; ok {
		return p, false
	}
	p := &Participant{ID: id, Rating: t.initialRating}
	t.record(&p.History, t.snapshot(label, t.initialRating, SourceInitial))
	t.participants[id] = p
	t.order = append(t.order, p)

	metrics.RecordParticipantCreated()
	metrics.UpdateParticipantsTotal(len(t.order))
	t.logger.Debug(ctx, "participant created",
		logger.String("participant", id),
		logger.String("label", label),
		logger.Float64("rating", t.initialRating),
	)
	return p, true
}

func (t *Tracker) snapshot(label string, rating float64, src Source) Snapshot {
	s := Snapshot{Label: label, Rating: rating, Source: src, Seq: t.seq}
	t.seq++
	return s
}
