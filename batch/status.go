package batch

import (
	"context"
	"errors"

	"github.com/cwbudde/algo-curie/grid"
	"github.com/cwbudde/algo-curie/inversion"
	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/spectrum"
)

// Status classifies the outcome for one centroid.
type Status int

const (
	StatusOK Status = iota
	StatusOutOfBounds
	StatusEmptyBin
	StatusNotConverged
	StatusInvalid
	StatusCanceled // batch context canceled or per-centroid timeout
	StatusFailed
)

var statusNames = [...]string{
	StatusOK:           "ok",
	StatusOutOfBounds:  "out-of-bounds",
	StatusEmptyBin:     "empty-bin",
	StatusNotConverged: "not-converged",
	StatusInvalid:      "invalid",
	StatusCanceled:     "canceled",
	StatusFailed:       "failed",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// statusOf maps an error to its Status.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	case errors.Is(err, grid.ErrOutOfBounds):
		return StatusOutOfBounds
	case errors.Is(err, spectrum.ErrEmptyBin):
		return StatusEmptyBin
	case errors.Is(err, inversion.ErrConvergence):
		return StatusNotConverged
	case errors.Is(err, model.ErrInvalidParameter), errors.Is(err, grid.ErrInvalidWindow):
		return StatusInvalid
	default:
		return StatusFailed
	}
}
