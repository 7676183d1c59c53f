package tracker

import "github.com/okian/multielo/pkg/logger"

// DefaultInitialRating is the rating of a newly created participant.
const DefaultInitialRating = 1000

// Retention selects how much rating history each participant keeps.
type Retention int

const (
	// RetainFull keeps a snapshot for every processed matchup.
	RetainFull Retention = iota
	// RetainLatest keeps only the most recent snapshot.
	RetainLatest
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithInitialRating sets the rating new participants start with.
func WithInitialRating(r float64) Option {
	return func(t *Tracker) {
		t.initialRating = r
	}
}

// WithRetention sets the history retention policy.
func WithRetention(r Retention) Option {
	return func(t *Tracker) {
		t.retention = r
	}
}

// WithLabelField fixes the event label field name up front.
func WithLabelField(field string) Option {
	return func(t *Tracker) {
		t.labelField = field
	}
}

// WithParticipants seeds the tracker, e.g. from persisted state. Order is
// kept as creation order.
func WithParticipants(ps ...Participant) Option {
	return func(t *Tracker) {
		t.seed = append(t.seed, ps...)
	}
}

// WithLogger injects the structured logger used for tracker events.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}
