package inversion

import "errors"

// ErrConvergence is returned when an optimisation stops without reaching
// a stationary point, or when every refit of a sensitivity run fails.
var ErrConvergence = errors.New("inversion: did not converge")
