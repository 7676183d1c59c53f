package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/multielo/internal/domain/tracker"
	"github.com/okian/multielo/pkg/logger"
	"github.com/okian/multielo/pkg/metrics"
)

// DefaultStateKey is the key the tracker state is stored under.
const DefaultStateKey = "multielo-state.json"

const stateVersion = 1

// State is everything needed to rebuild a tracker.
type State struct {
	LabelField   string
	Participants []tracker.Participant
}

// StateStore saves and loads tracker state as versioned JSON in a BlobStore.
type StateStore struct {
	blobs       BlobStore
	key         string
	withHistory bool
	logger      logger.Logger
}

// StateOption configures a StateStore.
type StateOption func(*StateStore)

// WithKey sets the key the state is stored under.
func WithKey(key string) StateOption {
	return func(s *StateStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithoutHistory keeps only each participant's latest snapshot when saving.
func WithoutHistory() StateOption {
	return func(s *StateStore) {
		s.withHistory = false
	}
}

// WithLogger injects the structured logger.
func WithLogger(l logger.Logger) StateOption {
	return func(s *StateStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStateStore wraps blobs.
func NewStateStore(blobs BlobStore, opts ...StateOption) *StateStore {
	s := &StateStore{
		blobs:       blobs,
		key:         DefaultStateKey,
		withHistory: true,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes st, replacing any previous state.
func (s *StateStore) Save(ctx context.Context, st State) error {
	start := time.Now()
	data, err := s.encode(st)
	if err == nil {
		err = s.blobs.Put(ctx, s.key, data)
	}
	if err != nil {
		metrics.RecordStateError("save")
		return fmt.Errorf("save state: %w", err)
	}
	metrics.RecordStateSave(float64(time.Since(start).Microseconds()) / 1000)
	s.logger.Info(ctx, "state saved",
		logger.String("key", s.key),
		logger.Int("participants", len(st.Participants)),
		logger.Int("bytes", len(data)),
	)
	return nil
}

// Load reads the stored state. It returns an error wrapping ErrNotFound
// when nothing was saved yet.
func (s *StateStore) Load(ctx context.Context) (State, error) {
	start := time.Now()
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return State{}, err
	}
	var st State
	if err == nil {
		st, err = decode(data)
	}
	if err != nil {
		metrics.RecordStateError("load")
		return State{}, fmt.Errorf("load state: %w", err)
	}
	metrics.RecordStateLoad(float64(time.Since(start).Microseconds()) / 1000)
	s.logger.Info(ctx, "state loaded",
		logger.String("key", s.key),
		logger.Int("participants", len(st.Participants)),
	)
	return st, nil
}

// Close closes the underlying blob store.
func (s *StateStore) Close() error {
	return s.blobs.Close()
}

type stateDoc struct {
	Version      int              `json:"version"`
	LabelField   string           `json:"label_field"`
	Participants []participantDoc `json:"participants"`
}

type participantDoc struct {
	ID      string        `json:"id"`
	Rating  float64       `json:"rating"`
	Games   int           `json:"games"`
	History []snapshotDoc `json:"history"`
}

type snapshotDoc struct {
	Label  string  `json:"label"`
	Rating float64 `json:"rating"`
	Source string  `json:"source"`
	Seq    uint64  `json:"seq"`
}

func (s *StateStore) encode(st State) ([]byte, error) {
	doc := stateDoc{
		Version:      stateVersion,
		LabelField:   st.LabelField,
		Participants: make([]participantDoc, 0, len(st.Participants)),
	}
	for _, p := range st.Participants {
		entries := p.History.Entries()
		if !s.withHistory && len(entries) > 1 {
			entries = entries[len(entries)-1:]
		}
		pd := participantDoc{
			ID:      p.ID,
			Rating:  p.Rating,
			Games:   p.Games,
			History: make([]snapshotDoc, len(entries)),
		}
		for i, e := range entries {
			pd.History[i] = snapshotDoc{Label: e.Label, Rating: e.Rating, Source: e.Source.String(), Seq: e.Seq}
		}
		doc.Participants = append(doc.Participants, pd)
	}
	return json.Marshal(doc)
}

func decode(data []byte) (State, error) {
	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	if doc.Version != stateVersion {
		return State{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	st := State{
		LabelField:   doc.LabelField,
		Participants: make([]tracker.Participant, len(doc.Participants)),
	}
	for i, pd := range doc.Participants {
		snaps := make([]tracker.Snapshot, len(pd.History))
		for j, sd := range pd.History {
			src, err := parseSource(sd.Source)
			if err != nil {
				return State{}, fmt.Errorf("decode state: participant %q: %w", pd.ID, err)
			}
			snaps[j] = tracker.Snapshot{Label: sd.Label, Rating: sd.Rating, Source: src, Seq: sd.Seq}
		}
		st.Participants[i] = tracker.Participant{
			ID:      pd.ID,
			Rating:  pd.Rating,
			Games:   pd.Games,
			History: tracker.NewHistory(snaps...),
		}
	}
	return st, nil
}

func parseSource(s string) (tracker.Source, error) {
	switch s {
	case tracker.SourceInitial.String():
		return tracker.SourceInitial, nil
	case tracker.SourceEvent.String():
		return tracker.SourceEvent, nil
	default:
		return 0, fmt.Errorf("unknown snapshot source %q", s)
	}
}
