package elo

import "errors"

// Sentinel error kinds for the rating engine. Other packages wrap these so
// callers can classify any failure with errors.Is.
var (
	// ErrConstraintViolation reports a caller error: malformed input or
	// parameters outside their documented range.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrContractViolation reports a broken score function or a numerical
	// bug. The engine refuses to return a result when it is raised.
	ErrContractViolation = errors.New("algorithm contract violation")

	// ErrDataShape reports inputs whose shape is inconsistent, such as
	// ragged simulation score matrices.
	ErrDataShape = errors.New("data shape violation")
)

// errorKind maps an error to the metrics label of its kind.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrContractViolation):
		return "contract"
	case errors.Is(err, ErrDataShape):
		return "data_shape"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint"
	default:
		return "unknown"
	}
}
