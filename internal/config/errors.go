package config

import "errors"

var (
	// ErrInvalidConfig wraps every rejected key, e.g. a non-positive k_value
	// or a max_simulation_runs below simulation_runs.
	ErrInvalidConfig = errors.New("invalid multielo config")
	// ErrLoadConfig wraps failures reading MULTIELO_CONFIG or the
	// MULTIELO_ environment.
	ErrLoadConfig = errors.New("load multielo config")
)
