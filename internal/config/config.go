// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// KValue, DValue, ScoreBase and LogBase parameterize the rating engine.
	KValue    float64 `koanf:"k_value"`
	DValue    float64 `koanf:"d_value"`
	ScoreBase float64 `koanf:"score_base"`
	LogBase   float64 `koanf:"log_base"`

	// InitialRating is assigned to participants on first appearance.
	InitialRating float64 `koanf:"initial_rating"`

	// KeepHistory keeps every rating snapshot instead of only the latest.
	KeepHistory bool `koanf:"keep_history"`

	// LabelField names the event label field of submitted matchups.
	LabelField string `koanf:"label_field"`

	// DedupeSize bounds the number of remembered matchup IDs (<= 0 unbounded).
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SimulationRuns is the default number of trials for /predict.
	SimulationRuns int `koanf:"simulation_runs"`

	// MaxSimulationRuns caps the runs a single /predict request may ask for.
	MaxSimulationRuns int `koanf:"max_simulation_runs"`

	// Store* configure where tracker state is persisted.
	StoreBackend string `koanf:"store_backend"` // none, file, bolt, s3
	StorePath    string `koanf:"store_path"`
	StoreBucket  string `koanf:"store_bucket"`
	StoreKey     string `koanf:"store_key"`
	StoreGzip    bool   `koanf:"store_gzip"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		KValue:              32,
		DValue:              400,
		ScoreBase:           1,
		LogBase:             10,
		InitialRating:       1000,
		KeepHistory:         true,
		LabelField:          "date",
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		SimulationRuns:      10_000,
		MaxSimulationRuns:   100_000,
		StoreBackend:        "none",
		StoreKey:            "multielo-state.json",
	}
}

// Validate reports every invalid field, each wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Addr == "" {
		invalid("addr must not be empty")
	}
	if !slices.Contains([]string{"text", "json"}, c.LogFormat) {
		invalid("log_format must be text or json, got %q", c.LogFormat)
	}
	if !(c.KValue > 0) {
		invalid("k_value must be positive, got %v", c.KValue)
	}
	if !(c.DValue > 0) {
		invalid("d_value must be positive, got %v", c.DValue)
	}
	if !(c.ScoreBase >= 1) {
		invalid("score_base must be at least 1, got %v", c.ScoreBase)
	}
	if !(c.LogBase > 1) {
		invalid("log_base must be greater than 1, got %v", c.LogBase)
	}
	if c.LabelField == "" {
		invalid("label_field must not be empty")
	}
	if c.MaxLeaderboardLimit <= 0 {
		invalid("max_leaderboard_limit must be positive, got %d", c.MaxLeaderboardLimit)
	}
	if c.SimulationRuns <= 0 {
		invalid("simulation_runs must be positive, got %d", c.SimulationRuns)
	}
	if c.MaxSimulationRuns < c.SimulationRuns {
		invalid("max_simulation_runs (%d) must be at least simulation_runs (%d)", c.MaxSimulationRuns, c.SimulationRuns)
	}

	switch c.StoreBackend {
	case "none":
	case "file", "bolt":
		if c.StorePath == "" {
			invalid("store_path is required for the %s backend", c.StoreBackend)
		}
	case "s3":
		if c.StoreBucket == "" {
			invalid("store_bucket is required for the s3 backend")
		}
	default:
		invalid("unknown store_backend %q", c.StoreBackend)
	}
	if c.StoreBackend != "none" && c.StoreKey == "" {
		invalid("store_key must not be empty")
	}
	return errors.Join(errs...)
}
