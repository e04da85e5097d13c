package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Window is a square sub-array extracted from a Grid.
type Window struct {
	Data       []float64 // row-major, Rows×Cols
	Rows, Cols int
	XC, YC     float64 // centre, snapped to the nearest node
	Requested  float64 // requested physical size
	Dx, Dy     float64
	Row0, Col0 int // position of Data[0] in the source grid
}

// Size returns the transform period along x, Cols·Dx.
func (w Window) Size() float64 {
	return float64(w.Cols) * w.Dx
}

// Matrix returns a dense view sharing Data.
func (w Window) Matrix() *mat.Dense {
	return mat.NewDense(w.Rows, w.Cols, w.Data)
}

// Window extracts the square window of physical size centred on (xc, yc).
//
// The requested bounds [xc±size/2]×[yc±size/2] must lie inside the grid
// extent; windows are never clipped. The centre is snapped to the nearest
// node and the window spans 2h+1 nodes per axis with h = ⌊size/(2·spacing)⌋.
func (g *Grid) Window(xc, yc, size float64) (Window, error) {
	if !(size > 0) || math.IsInf(size, 0) || math.IsNaN(xc) || math.IsNaN(yc) {
		return Window{}, fmt.Errorf("%w: size=%v centre=(%v,%v)", ErrInvalidWindow, size, xc, yc)
	}

	half := 0.5 * size
	ext := g.extent
	tol := ext.tolerance()
	if xc-half < ext.XMin-tol || xc+half > ext.XMax+tol ||
		yc-half < ext.YMin-tol || yc+half > ext.YMax+tol {
		return Window{}, fmt.Errorf("%w: window %.6g at (%.6g, %.6g) outside [%.6g, %.6g]x[%.6g, %.6g]",
			ErrOutOfBounds, size, xc, yc, ext.XMin, ext.XMax, ext.YMin, ext.YMax)
	}

	hx := int(math.Floor(half/g.dx + 1e-9))
	hy := int(math.Floor(half/g.dy + 1e-9))
	if hx < 1 || hy < 1 {
		return Window{}, fmt.Errorf("%w: size %.6g spans fewer than 3 nodes", ErrInvalidWindow, size)
	}

	ix := int(math.Round((xc - ext.XMin) / g.dx))
	iy := int(math.Round((yc - ext.YMin) / g.dy))
	c0, c1 := ix-hx, ix+hx
	r0, r1 := iy-hy, iy+hy
	if c0 < 0 || r0 < 0 || c1 >= g.cols || r1 >= g.rows {
		return Window{}, fmt.Errorf("%w: snapped window [%d:%d]x[%d:%d] outside %dx%d grid",
			ErrOutOfBounds, r0, r1, c0, c1, g.rows, g.cols)
	}

	rows, cols := r1-r0+1, c1-c0+1
	data := make([]float64, 0, rows*cols)
	for r := r0; r <= r1; r++ {
		data = append(data, g.data[r*g.cols+c0:r*g.cols+c1+1]...)
	}

	return Window{
		Data:      data,
		Rows:      rows,
		Cols:      cols,
		XC:        g.X(ix),
		YC:        g.Y(iy),
		Requested: size,
		Dx:        g.dx,
		Dy:        g.dy,
		Row0:      r0,
		Col0:      c0,
	}, nil
}
