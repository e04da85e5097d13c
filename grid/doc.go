// Package grid holds gridded magnetic-anomaly data and the geometry used to
// tile it: square window extraction around a centre, regular centroid
// lattices, and FFT-based field transformations (upward continuation and
// reduction to the pole).
//
// A [Grid] is node-registered: column j sits at x = XMin + j·Dx with
// Dx = (XMax-XMin)/(Cols-1), and row i at y = YMin + i·Dy. Grids are
// immutable after construction and safe for concurrent reads.
package grid
