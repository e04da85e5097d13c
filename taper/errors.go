package taper

import (
	"errors"
	"fmt"
)

var (
	errMismatchedShape = errors.New("taper: data length does not match rows*cols")
	errUnknownType     = errors.New("taper: unknown type")
)

func validateShape(n, rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("taper: shape must be positive: %dx%d", rows, cols)
	}
	if n != rows*cols {
		return fmt.Errorf("%w: %d != %d*%d", errMismatchedShape, n, rows, cols)
	}
	return nil
}
