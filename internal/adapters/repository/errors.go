package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNotFound           = errors.New("state not found")
	ErrUnknownBackend     = errors.New("unknown store backend")
	ErrInvalidKey         = errors.New("invalid store key")
	ErrUnsupportedVersion = errors.New("unsupported state version")
)
