package ratebatch

import (
	"errors"
	"fmt"

	"github.com/okian/multielo/internal/adapters/ingest"
	"github.com/okian/multielo/internal/domain/elo"
	"github.com/okian/multielo/internal/domain/tracker"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid ratebatch config")

// Config holds the settings of one batch run.
type Config struct {
	Input         string  // batch file, .csv or .jsonl
	LabelField    string  // label column or key
	K             float64 // rating swing
	D             float64 // rating spread
	ScoreBase     float64 // 1 is linear, >1 rewards winning more
	LogBase       float64 // base of the logistic curve
	InitialRating float64 // rating of new participants
	KeepHistory   bool    // keep every snapshot in saved state
	StatePath     string  // state file loaded before and saved after the run
	Top           int     // rows to print, 0 for all
	Verbose       bool    // debug logging on stderr
}

// DefaultConfig returns the settings used when no flag overrides them.
func DefaultConfig() Config {
	return Config{
		LabelField:    ingest.DefaultLabelField,
		K:             elo.DefaultK,
		D:             elo.DefaultD,
		ScoreBase:     elo.DefaultScoreBase,
		LogBase:       elo.DefaultLogBase,
		InitialRating: tracker.DefaultInitialRating,
		KeepHistory:   true,
	}
}

// Validate checks the settings the engine does not check itself.
func (c Config) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, fmt.Errorf("%w: -input is required", ErrInvalidConfig))
	}
	if c.LabelField == "" {
		errs = append(errs, fmt.Errorf("%w: -label must not be empty", ErrInvalidConfig))
	}
	if c.Top < 0 {
		errs = append(errs, fmt.Errorf("%w: -top must not be negative, got %d", ErrInvalidConfig, c.Top))
	}
	return errors.Join(errs...)
}
