package service

import (
	"errors"
	"fmt"

	"github.com/okian/multielo/internal/domain/elo"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrInvalidLimit = fmt.Errorf("invalid leaderboard limit: %w", elo.ErrConstraintViolation)
	ErrInvalidQuery = fmt.Errorf("invalid query: %w", elo.ErrConstraintViolation)
)
