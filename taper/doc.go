// Package taper generates separable 2-D window functions applied to grid
// windows before the Fourier transform to reduce spectral leakage.
//
// Coefficients follow the symmetric (non-periodic) convention, so a Hann
// taper is zero on both edges. [Apply2D] returns the power gain Σw² of the
// applied taper; spectra divide by it so that tapered and untapered estimates
// of a white field sit at the same level.
package taper
