// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"

	"github.com/okian/multielo/internal/domain/elo"
)

// ErrInvalidMatchup is returned by Validate. It is a constraint violation.
var ErrInvalidMatchup = fmt.Errorf("invalid matchup: %w", elo.ErrConstraintViolation)

// Matchup is one ranked contest submitted by clients or read from a batch.
// Places[i] holds the participants that finished in slot i: none, one, or
// several when they tied.
type Matchup struct {
	ID     string     `json:"id,omitempty"` // optional, used for idempotency
	Label  string     `json:"label"`        // event label, e.g. a date
	Places [][]string `json:"places"`
}

// Validate checks the fields required for a matchup submitted on its own.
func (m Matchup) Validate() error {
	var errs []error
	if m.Label == "" {
		errs = append(errs, fmt.Errorf("%w: label is required", ErrInvalidMatchup))
	}
	if len(m.Places) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one place is required", ErrInvalidMatchup))
	}
	for i, slot := range m.Places {
		for _, id := range slot {
			if id == "" {
				errs = append(errs, fmt.Errorf("%w: empty participant id in place %d", ErrInvalidMatchup, i+1))
			}
		}
	}
	return errors.Join(errs...)
}

// Participants flattens the places into parallel slices of IDs and finish
// order values. Every ID in slot i gets order value i, so tied IDs share a
// value and empty slots leave gaps.
func (m Matchup) Participants() ([]string, []int) {
	var (
		ids   []string
		order []int
	)
	for i, slot := range m.Places {
		for _, id := range slot {
			ids = append(ids, id)
			order = append(order, i)
		}
	}
	return ids, order
}

// Size returns the number of participants in the matchup.
func (m Matchup) Size() int {
	n := 0
	for _, slot := range m.Places {
		n += len(slot)
	}
	return n
}
