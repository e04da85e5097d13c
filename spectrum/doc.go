// Package spectrum estimates radially and azimuthally averaged log power
// spectra of grid windows.
//
// A window is optionally demeaned, multiplied by a separable taper and
// transformed with a 2-D DFT. Each pixel's power |F|^p is divided by the
// taper power gain Σw² and logged. Pixels are then binned by |k| into
// annuli of width dk = 2π/(N·dx) centred on m·dk, m = 1..⌊N/2⌋. The DC
// term is never used.
//
// Bins with fewer than the minimum count of contributing pixels are left
// out of a [Radial] spectrum and reported as NaN in an [Azimuthal] one.
// They are never filled with zeros.
package spectrum
