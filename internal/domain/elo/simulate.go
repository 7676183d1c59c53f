package elo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/okian/multielo/pkg/metrics"
)

// SimulateWinProbabilities estimates, by Monte Carlo, the probability that
// each participant finishes in each place. The result is an n×n matrix:
// row i is the caller's participant i, column j is place j (0 = first).
//
// Each trial draws one Gumbel sample per participant with location equal to
// the rating and scale d/ln(logBase), then ranks the samples. The difference
// of two such Gumbel variables is logistic with the same scale, which is the
// pairwise model ExpectedScores uses.
func (e *Engine) SimulateWinProbabilities(ratings []float64, runs int, opts ...SimOption) ([][]float64, error) {
	n := len(ratings)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 ratings, got %d", ErrConstraintViolation, n)
	}
	if runs < 1 {
		return nil, fmt.Errorf("%w: simulation runs must be positive, got %d", ErrConstraintViolation, runs)
	}
	for i, r := range ratings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: rating %d is not finite (%v)", ErrConstraintViolation, i, r)
		}
	}

	cfg := simConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	seed := cfg.seed
	if !cfg.seeded {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // simulation, not security

	// Draw in rating order so a seed gives the same answer whatever order
	// the caller lists participants in.
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return ratings[perm[a]] < ratings[perm[b]] })

	scale := e.d / math.Log(e.logBase)
	samples := make([][]float64, n)
	for s, i := range perm {
		row := make([]float64, runs)
		for t := range row {
			row[t] = gumbel(rng, ratings[i], scale)
		}
		samples[s] = row
	}

	sorted, err := ResultProportions(samples)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, n)
	for s, i := range perm {
		out[i] = sorted[s]
	}
	metrics.RecordSimulation()
	return out, nil
}

// ResultProportions turns simulated scores into finishing-place proportions.
// scores[i][t] is participant i's score in trial t; higher scores finish
// better and equal scores are ordered by participant index. Every row must
// have the same number of trials.
func ResultProportions(scores [][]float64) ([][]float64, error) {
	n := len(scores)
	if n == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrDataShape)
	}
	runs := len(scores[0])
	if runs == 0 {
		return nil, fmt.Errorf("%w: no trials", ErrDataShape)
	}
	for i, row := range scores {
		if len(row) != runs {
			return nil, fmt.Errorf("%w: participant %d has %d trials, expected %d", ErrDataShape, i, len(row), runs)
		}
	}

	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	idx := make([]int, n)
	for t := 0; t < runs; t++ {
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]][t] > scores[idx[b]][t] })
		for place, i := range idx {
			counts[i][place]++
		}
	}

	out := make([][]float64, n)
	for i, row := range counts {
		out[i] = make([]float64, n)
		for place, c := range row {
			out[i][place] = float64(c) / float64(runs)
		}
	}
	return out, nil
}

func gumbel(rng *rand.Rand, loc, scale float64) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return loc - scale*math.Log(-math.Log(u))
}
