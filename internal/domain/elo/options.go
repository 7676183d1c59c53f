package elo

import "github.com/okian/multielo/pkg/logger"

// Default algorithm parameters.
const (
	DefaultK         = 32
	DefaultD         = 400
	DefaultScoreBase = 1
	DefaultLogBase   = 10
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithK sets the K value: how much ratings move after each matchup.
func WithK(k float64) Option {
	return func(e *Engine) {
		e.k = k
	}
}

// WithD sets the D value: how much a rating gap affects win probability.
func WithD(d float64) Option {
	return func(e *Engine) {
		e.d = d
	}
}

// WithScoreBase selects the built-in exponential score function with the
// given base (1 = linear). Ignored when WithScoreFunction is also given.
func WithScoreBase(base float64) Option {
	return func(e *Engine) {
		e.scoreBase = base
	}
}

// WithScoreFunction installs a custom score function. It takes precedence
// over WithScoreBase.
func WithScoreFunction(sf ScoreFunction) Option {
	return func(e *Engine) {
		if sf != nil {
			e.score = sf
		}
	}
}

// WithLogBase sets the base of the logistic curve (10 for classic Elo).
func WithLogBase(base float64) Option {
	return func(e *Engine) {
		e.logBase = base
	}
}

// WithLogger injects the structured logger used for engine events.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// SimOption configures a single simulation run.
type SimOption func(*simConfig)

type simConfig struct {
	seed   int64
	seeded bool
}

// WithSeed makes a simulation reproducible.
func WithSeed(seed int64) SimOption {
	return func(c *simConfig) {
		c.seed = seed
		c.seeded = true
	}
}
