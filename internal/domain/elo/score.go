package elo

import (
	"fmt"
	"math"
)

// ScoreFunction produces the points awarded to each finishing place in an
// n-participant matchup: first place first. Results are validated by the
// engine on every call.
type ScoreFunction interface {
	Scores(n int) ([]float64, error)
}

// ScoreFunc adapts a plain function to the ScoreFunction interface.
type ScoreFunc func(n int) ([]float64, error)

// Scores calls f(n).
func (f ScoreFunc) Scores(n int) ([]float64, error) { return f(n) }

type linearScores struct{}

// Linear returns the score function where points fall by the same amount
// from each place to the next: score(p) = (n-p) / (n(n-1)/2).
func Linear() ScoreFunction { return linearScores{} }

func (linearScores) Scores(n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: score function needs at least 2 participants, got %d", ErrConstraintViolation, n)
	}
	pairs := float64(n*(n-1)) / 2
	out := make([]float64, n)
	for p := 1; p <= n; p++ {
		out[p-1] = float64(n-p) / pairs
	}
	return out, nil
}

type exponentialScores struct {
	base float64
}

// Exponential returns a score function where score(p) is proportional to
// base^(n-p) - 1. Larger bases weight the points towards the top finishers.
// A base of 1 is the Linear function.
func Exponential(base float64) (ScoreFunction, error) {
	if math.IsNaN(base) || base < 1 {
		return nil, fmt.Errorf("%w: score function base must be >= 1, got %v", ErrConstraintViolation, base)
	}
	if base == 1 {
		return Linear(), nil
	}
	return exponentialScores{base: base}, nil
}

func (e exponentialScores) Scores(n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: score function needs at least 2 participants, got %d", ErrConstraintViolation, n)
	}
	out := make([]float64, n)
	var total float64
	for p := 1; p <= n; p++ {
		out[p-1] = math.Pow(e.base, float64(n-p)) - 1
		total += out[p-1]
	}
	for i := range out {
		out[i] /= total
	}
	return out, nil
}
