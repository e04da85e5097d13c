package spectrum

import "errors"

// ErrEmptyBin is returned when no wavenumber bin has enough contributing
// pixels to report a power estimate.
var ErrEmptyBin = errors.New("spectrum: no populated wavenumber bin")

var errBadWindow = errors.New("spectrum: malformed window")
