package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a centroid coordinate.
type Point struct {
	X, Y float64
}

// Lattice is a row-major list of window centres. Row index follows y.
type Lattice struct {
	Points     []Point
	Rows, Cols int
	Window     float64
}

// Len returns the number of centroids.
func (l Lattice) Len() int { return len(l.Points) }

// Index returns the flat index of lattice row r, column c.
func (l Lattice) Index(r, c int) int { return r*l.Cols + c }

// Reshape lays values out as a Rows×Cols matrix. It panics if
// len(values) != Len().
func (l Lattice) Reshape(values []float64) *mat.Dense {
	if len(values) != l.Len() {
		panic(fmt.Sprintf("grid: reshape of %d values onto %dx%d lattice", len(values), l.Rows, l.Cols))
	}
	return mat.NewDense(l.Rows, l.Cols, append([]float64(nil), values...))
}

// Centroids returns the lattice of centres at spacing (sx, sy) whose
// windows of the given size fit inside the grid:
//
//	x_i = XMin + window/2 + i·sx,  i = 0 .. ⌊(W-window)/sx⌋
//
// Non-positive spacings default to window/2.
func (g *Grid) Centroids(window, sx, sy float64) (Lattice, error) {
	if !(window > 0) || math.IsInf(window, 0) {
		return Lattice{}, fmt.Errorf("%w: %v", ErrInvalidWindow, window)
	}
	if !(sx > 0) {
		sx = 0.5 * window
	}
	if !(sy > 0) {
		sy = 0.5 * window
	}

	ext := g.extent
	tol := ext.tolerance()
	spanX := ext.Width() - window
	spanY := ext.Height() - window
	if spanX < -tol || spanY < -tol {
		return Lattice{}, fmt.Errorf("%w: window %.6g larger than %.6gx%.6g extent",
			ErrOutOfBounds, window, ext.Width(), ext.Height())
	}

	nx := int(math.Floor(math.Max(spanX, 0)/sx+1e-9)) + 1
	ny := int(math.Floor(math.Max(spanY, 0)/sy+1e-9)) + 1

	points := make([]Point, 0, nx*ny)
	x0 := ext.XMin + 0.5*window
	y0 := ext.YMin + 0.5*window
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			points = append(points, Point{X: x0 + float64(i)*sx, Y: y0 + float64(j)*sy})
		}
	}

	return Lattice{Points: points, Rows: ny, Cols: nx, Window: window}, nil
}
