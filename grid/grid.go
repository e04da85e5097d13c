package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Extent is the physical bounding box of a grid.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Width returns XMax - XMin.
func (e Extent) Width() float64 { return e.XMax - e.XMin }

// Height returns YMax - YMin.
func (e Extent) Height() float64 { return e.YMax - e.YMin }

func (e Extent) validate() error {
	for _, v := range []float64{e.XMin, e.XMax, e.YMin, e.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: extent is not finite: %+v", ErrInvalidGrid, e)
		}
	}
	if !(e.XMax > e.XMin) || !(e.YMax > e.YMin) {
		return fmt.Errorf("%w: extent must have max > min: %+v", ErrInvalidGrid, e)
	}
	return nil
}

// tolerance is the slack allowed when comparing physical bounds.
func (e Extent) tolerance() float64 {
	return 1e-9 * math.Max(e.Width(), e.Height())
}

// Grid is an immutable 2-D anomaly field with its physical extent.
type Grid struct {
	data   []float64
	rows   int
	cols   int
	extent Extent
	dx, dy float64
}

// New copies row-major data of shape rows×cols into a Grid.
func New(data []float64, rows, cols int, ext Extent) (*Grid, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: need at least 2x2 nodes, got %dx%d", ErrInvalidGrid, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: data length %d != %d*%d", ErrInvalidGrid, len(data), rows, cols)
	}
	if err := ext.validate(); err != nil {
		return nil, err
	}

	return &Grid{
		data:   append([]float64(nil), data...),
		rows:   rows,
		cols:   cols,
		extent: ext,
		dx:     ext.Width() / float64(cols-1),
		dy:     ext.Height() / float64(rows-1),
	}, nil
}

// FromRows builds a Grid from a slice of equal-length rows.
func FromRows(values [][]float64, ext Extent) (*Grid, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidGrid)
	}
	cols := len(values[0])
	data := make([]float64, 0, len(values)*cols)
	for i, row := range values {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidGrid, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return New(data, len(values), cols, ext)
}

// FromMatrix builds a Grid from any gonum matrix.
func FromMatrix(m mat.Matrix, ext Extent) (*Grid, error) {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data = append(data, m.At(r, c))
		}
	}
	return New(data, rows, cols, ext)
}

// Rows returns the number of rows (y nodes).
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns (x nodes).
func (g *Grid) Cols() int { return g.cols }

// Extent returns the physical bounds.
func (g *Grid) Extent() Extent { return g.extent }

// Dx returns the node spacing along x.
func (g *Grid) Dx() float64 { return g.dx }

// Dy returns the node spacing along y.
func (g *Grid) Dy() float64 { return g.dy }

// At returns the value at row r, column c.
func (g *Grid) At(r, c int) float64 { return g.data[r*g.cols+c] }

// X returns the x coordinate of column c.
func (g *Grid) X(c int) float64 { return g.extent.XMin + float64(c)*g.dx }

// Y returns the y coordinate of row r.
func (g *Grid) Y(r int) float64 { return g.extent.YMin + float64(r)*g.dy }

// Data returns a copy of the row-major values.
func (g *Grid) Data() []float64 {
	return append([]float64(nil), g.data...)
}

// Matrix returns a copy of the values as a dense matrix.
func (g *Grid) Matrix() *mat.Dense {
	return mat.NewDense(g.rows, g.cols, g.Data())
}

func (g *Grid) withData(data []float64) *Grid {
	return &Grid{data: data, rows: g.rows, cols: g.cols, extent: g.extent, dx: g.dx, dy: g.dy}
}
