package service

import (
	"github.com/okian/multielo/internal/adapters/repository"
	"github.com/okian/multielo/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngineParams sets the rating engine parameters: swing k, spread d,
// score base and logistic log base.
func WithEngineParams(k, d, scoreBase, logBase float64) Option {
	return func(s *Service) {
		s.k, s.d, s.scoreBase, s.logBase = k, d, scoreBase, logBase
	}
}

// WithInitialRating sets the rating new participants start with.
func WithInitialRating(r float64) Option {
	return func(s *Service) {
		s.initialRating = r
	}
}

// WithKeepHistory keeps every rating snapshot when true, only the latest
// when false.
func WithKeepHistory(keep bool) Option {
	return func(s *Service) {
		s.keepHistory = keep
	}
}

// WithLabelField sets the event label field name of submitted matchups.
func WithLabelField(field string) Option {
	return func(s *Service) {
		if field != "" {
			s.labelField = field
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithMaxLeaderboardLimit caps the number of leaderboard rows returned.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// WithSimulationRuns sets the default number of trials for Predict.
func WithSimulationRuns(runs int) Option {
	return func(s *Service) {
		if runs > 0 {
			s.simulationRuns = runs
		}
	}
}

// WithMaxSimulationRuns caps the trials a single Predict call may ask for.
func WithMaxSimulationRuns(runs int) Option {
	return func(s *Service) {
		if runs > 0 {
			s.maxSimulationRuns = runs
		}
	}
}

// WithStateStore persists tracker state: loaded on Start, saved after every
// change and on Stop.
func WithStateStore(store *repository.StateStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
