// Package elo implements a generalized Elo rating system for matchups with
// any number of participants, including ties.
//
// Ratings are compared pairwise through a logistic curve to get each
// participant's expected share of the points; the finishing order is turned
// into actual shares by a ScoreFunction. The difference, scaled by K(n-1),
// is the rating change. Both shares sum to one so every update is zero-sum.
package elo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/multielo/pkg/logger"
	"github.com/okian/multielo/pkg/metrics"
)

// scoreTolerance bounds the floating point error accepted by the sum,
// floor and monotonicity checks.
const scoreTolerance = 1e-9

// Result holds everything computed for one matchup. All slices follow the
// caller's participant order.
type Result struct {
	Actual   []float64
	Expected []float64
	Ratings  []float64
}

// Engine computes multiplayer Elo rating updates. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	k         float64
	d         float64
	logBase   float64
	scoreBase float64
	score     ScoreFunction
	logger    logger.Logger
}

// New constructs an Engine. K and D must be positive and finite, the log base
// must exceed 1 and the score base must be at least 1.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		k:         DefaultK,
		d:         DefaultD,
		logBase:   DefaultLogBase,
		scoreBase: DefaultScoreBase,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if !(e.k > 0) || math.IsInf(e.k, 0) {
		return nil, fmt.Errorf("%w: k must be positive, got %v", ErrConstraintViolation, e.k)
	}
	if !(e.d > 0) || math.IsInf(e.d, 0) {
		return nil, fmt.Errorf("%w: d must be positive, got %v", ErrConstraintViolation, e.d)
	}
	if !(e.logBase > 1) || math.IsInf(e.logBase, 0) {
		return nil, fmt.Errorf("%w: log base must be > 1, got %v", ErrConstraintViolation, e.logBase)
	}
	if e.score == nil {
		sf, err := Exponential(e.scoreBase)
		if err != nil {
			return nil, err
		}
		e.score = sf
	}
	return e, nil
}

// K returns the rating swing magnitude.
func (e *Engine) K() float64 { return e.k }

// D returns the spread constant.
func (e *Engine) D() float64 { return e.d }

// LogBase returns the base of the logistic curve.
func (e *Engine) LogBase() float64 { return e.logBase }

// ExpectedScores returns each participant's expected share of the points
// given their ratings. The shares sum to one.
func (e *Engine) ExpectedScores(ratings []float64) ([]float64, error) {
	n := len(ratings)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 ratings, got %d", ErrConstraintViolation, n)
	}
	for i, r := range ratings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: rating %d is not finite (%v)", ErrConstraintViolation, i, r)
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p := 1 / (1 + math.Pow(e.logBase, (ratings[j]-ratings[i])/e.d))
			out[i] += p
			out[j] += 1 - p
		}
	}

	pairs := float64(n*(n-1)) / 2
	var total float64
	for i := range out {
		out[i] /= pairs
		total += out[i]
	}
	if math.Abs(total-1) > scoreTolerance {
		return nil, fmt.Errorf("%w: expected scores sum to %v", ErrContractViolation, total)
	}
	return out, nil
}

// ActualScores converts a finishing order into each participant's share of
// the points. order[i] is participant i's place: lower is better, equal
// values are ties, values need not be contiguous. A nil order means the
// participants finished in slice order. Tied participants split the points of
// the places they occupy evenly.
func (e *Engine) ActualScores(n int, order []int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 participants, got %d", ErrConstraintViolation, n)
	}
	if order == nil {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}
	if len(order) != n {
		return nil, fmt.Errorf("%w: finish order has %d entries for %d participants", ErrConstraintViolation, len(order), n)
	}

	base, err := e.score.Scores(n)
	if err != nil {
		return nil, fmt.Errorf("%w: score function failed for n=%d: %w", ErrContractViolation, n, err)
	}
	if len(base) != n {
		return nil, fmt.Errorf("%w: score function returned %d scores for n=%d", ErrContractViolation, len(base), n)
	}

	ranked := finishOrder(order)
	scores := make([]float64, n)
	for place, i := range ranked {
		scores[i] = base[place]
	}

	// ties share the mean of the places they occupy
	for start := 0; start < n; {
		end := start + 1
		for end < n && order[ranked[end]] == order[ranked[start]] {
			end++
		}
		if end-start > 1 {
			var sum float64
			for _, i := range ranked[start:end] {
				sum += scores[i]
			}
			mean := sum / float64(end-start)
			for _, i := range ranked[start:end] {
				scores[i] = mean
			}
		}
		start = end
	}

	if err := validateActualScores(scores, order, ranked); err != nil {
		return nil, err
	}
	return scores, nil
}

// NewRatings returns the updated ratings for one matchup, in the same order
// as the input.
func (e *Engine) NewRatings(ratings []float64, order []int) ([]float64, error) {
	res, err := e.rate(ratings, order)
	if err != nil {
		return nil, err
	}
	return res.Ratings, nil
}

// Rate computes actual scores, expected scores and new ratings for one
// matchup and reports the computation to the logger and metrics.
func (e *Engine) Rate(ctx context.Context, ratings []float64, order []int) (Result, error) {
	start := time.Now()
	res, err := e.rate(ratings, order)
	if err != nil {
		metrics.RecordEngineError(errorKind(err))
		e.logger.Warn(ctx, "rating computation rejected",
			logger.Int("participants", len(ratings)),
			logger.Error(err),
		)
		return Result{}, err
	}
	metrics.RecordRatingComputation(float64(time.Since(start).Microseconds()) / 1000)
	e.logger.Debug(ctx, "ratings computed",
		logger.Int("participants", len(ratings)),
		logger.Any("expected", res.Expected),
		logger.Any("actual", res.Actual),
	)
	return res, nil
}

func (e *Engine) rate(ratings []float64, order []int) (Result, error) {
	expected, err := e.ExpectedScores(ratings)
	if err != nil {
		return Result{}, err
	}
	n := len(ratings)
	actual, err := e.ActualScores(n, order)
	if err != nil {
		return Result{}, err
	}

	scale := e.k * float64(n-1)
	updated := make([]float64, n)
	for i := range ratings {
		updated[i] = ratings[i] + scale*(actual[i]-expected[i])
	}
	return Result{Actual: actual, Expected: expected, Ratings: updated}, nil
}

// finishOrder returns participant indices sorted from best to worst place.
// Ties keep their input order.
func finishOrder(order []int) []int {
	idx := make([]int, len(order))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return order[idx[a]] < order[idx[b]] })
	return idx
}

func validateActualScores(scores []float64, order []int, ranked []int) error {
	var total float64
	lowest := math.Inf(1)
	for _, s := range scores {
		if math.IsNaN(s) || s < -scoreTolerance {
			return fmt.Errorf("%w: score function returned a negative or NaN score (%v)", ErrContractViolation, s)
		}
		total += s
		lowest = math.Min(lowest, s)
	}
	if math.Abs(total-1) > scoreTolerance {
		return fmt.Errorf("%w: scores sum to %v, not 1", ErrContractViolation, total)
	}

	// A tie for last place averages the zero away, so the floor only
	// applies when a single participant finished last.
	if math.Abs(lowest) > scoreTolerance {
		worst := order[ranked[len(ranked)-1]]
		tiedLast := 0
		for _, o := range order {
			if o == worst {
				tiedLast++
			}
		}
		if tiedLast == 1 {
			return fmt.Errorf("%w: minimum score is %v, not 0", ErrContractViolation, lowest)
		}
	}

	for k := 1; k < len(ranked); k++ {
		if scores[ranked[k]] > scores[ranked[k-1]]+scoreTolerance {
			return fmt.Errorf("%w: scores are not monotonically decreasing by place", ErrContractViolation)
		}
	}
	return nil
}
