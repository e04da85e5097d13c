package grid

import "errors"

var (
	// ErrOutOfBounds reports a window or lattice that does not fit inside the
	// grid extent.
	ErrOutOfBounds = errors.New("window exceeds grid extent")

	// ErrInvalidWindow reports a non-positive or degenerate window size.
	ErrInvalidWindow = errors.New("invalid window size")

	// ErrInvalidGrid reports malformed grid data or extent.
	ErrInvalidGrid = errors.New("invalid grid")
)
