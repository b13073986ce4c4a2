package detection

import (
	"errors"
)

// Sentinel errors returned by the change detector. Callers should test for them
// with errors.Is; the concrete error carries the reason as wrapped context.
var (
	// ErrInvalidImage is returned when an input image is missing, empty,
	// has no channels, or cannot be decoded.
	ErrInvalidImage = errors.New("invalid image")

	// ErrDimensionMismatch is returned when the inputs differ in size and
	// resizing has been disabled.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrComputation is returned when scoring produces a non-finite value.
	ErrComputation = errors.New("computation failed")

	// ErrInvalidOptions is returned when Options fail validation.
	ErrInvalidOptions = errors.New("invalid options")
)

// ErrorTag returns the tag reported to collaborators for err:
// "InvalidImageError", "DimensionMismatchError", "ComputationError",
// "InvalidOptionsError", or "" when err is not a detector error.
func ErrorTag(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidImage):
		return "InvalidImageError"
	case errors.Is(err, ErrDimensionMismatch):
		return "DimensionMismatchError"
	case errors.Is(err, ErrComputation):
		return "ComputationError"
	case errors.Is(err, ErrInvalidOptions):
		return "InvalidOptionsError"
	default:
		return ""
	}
}
