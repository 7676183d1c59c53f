package tracker

import (
	"fmt"

	"github.com/okian/multielo/internal/domain/elo"
)

// Tracker errors. All of them are constraint violations.
var (
	ErrDuplicateParticipant = fmt.Errorf("duplicate participant: %w", elo.ErrConstraintViolation)
	ErrLabelFieldMismatch   = fmt.Errorf("label field mismatch: %w", elo.ErrConstraintViolation)
	ErrParticipantNotFound  = fmt.Errorf("participant not found: %w", elo.ErrConstraintViolation)
	ErrNilEngine            = fmt.Errorf("rating engine is required: %w", elo.ErrConstraintViolation)
)
