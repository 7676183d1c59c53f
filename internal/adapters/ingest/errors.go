package ingest

import (
	"errors"
	"fmt"

	"github.com/okian/multielo/internal/domain/elo"
)

var (
	// ErrMalformedBatch reports input that does not follow the batch
	// layout. It is a data shape violation.
	ErrMalformedBatch = fmt.Errorf("malformed batch: %w", elo.ErrDataShape)

	// ErrUnknownFormat is returned by ReadFile for unsupported extensions.
	ErrUnknownFormat = errors.New("unknown batch format")
)
