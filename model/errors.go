package model

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter reports malformed model parameters or wavenumbers.
var ErrInvalidParameter = errors.New("invalid model parameter")

var errLengthMismatch = errors.New("wavenumber and output slices must have same length")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}
