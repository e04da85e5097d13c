// Package fft2 provides row-column 2-D discrete Fourier transforms over
// row-major complex data.
//
// Power-of-two lines use algo-fft plans; other lengths fall back to the
// mixed-radix transform in gonum's dsp/fourier. Forward transforms are
// unnormalised and inverse transforms are scaled by 1/(rows*cols), so
// Inverse(Forward(x)) == x.
package fft2

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

var errShape = errors.New("fft2: buffer length does not match plan shape")

// lineTransform is a 1-D transform with normalised inverse.
type lineTransform interface {
	Forward(dst, src []complex128) error
	Inverse(dst, src []complex128) error
}

type gonumLine struct {
	fft   *fourier.CmplxFFT
	scale complex128
}

func (g *gonumLine) Forward(dst, src []complex128) error {
	g.fft.Coefficients(dst, src)
	return nil
}

func (g *gonumLine) Inverse(dst, src []complex128) error {
	g.fft.Sequence(dst, src)
	for i := range dst {
		dst[i] *= g.scale
	}
	return nil
}

func newLine(n int) (lineTransform, error) {
	if isPowerOf2(n) {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("fft2: failed to create FFT plan: %w", err)
		}
		return plan, nil
	}
	return &gonumLine{fft: fourier.NewCmplxFFT(n), scale: complex(1/float64(n), 0)}, nil
}

// Plan transforms rows×cols arrays. A Plan holds scratch memory and must
// not be shared between goroutines.
type Plan struct {
	rows, cols int
	row, col   lineTransform
	line       []complex128
}

// NewPlan creates a plan for rows×cols data.
func NewPlan(rows, cols int) (*Plan, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("fft2: shape must be positive: %dx%d", rows, cols)
	}
	row, err := newLine(cols)
	if err != nil {
		return nil, err
	}
	col, err := newLine(rows)
	if err != nil {
		return nil, err
	}
	return &Plan{
		rows: rows,
		cols: cols,
		row:  row,
		col:  col,
		line: make([]complex128, max(rows, cols)),
	}, nil
}

// Rows returns the number of rows the plan transforms.
func (p *Plan) Rows() int { return p.rows }

// Cols returns the number of columns the plan transforms.
func (p *Plan) Cols() int { return p.cols }

// Forward computes the unnormalised 2-D DFT of src into dst. dst and src
// may be the same slice.
func (p *Plan) Forward(dst, src []complex128) error {
	return p.transform(dst, src, true)
}

// Inverse computes the normalised inverse 2-D DFT of src into dst.
func (p *Plan) Inverse(dst, src []complex128) error {
	return p.transform(dst, src, false)
}

func (p *Plan) transform(dst, src []complex128, forward bool) error {
	n := p.rows * p.cols
	if len(dst) != n || len(src) != n {
		return fmt.Errorf("%w: dst=%d src=%d want %d", errShape, len(dst), len(src), n)
	}
	if &dst[0] != &src[0] {
		copy(dst, src)
	}

	apply := func(t lineTransform, buf []complex128) error {
		if forward {
			return t.Forward(buf, buf)
		}
		return t.Inverse(buf, buf)
	}

	line := p.line[:p.cols]
	for r := 0; r < p.rows; r++ {
		copy(line, dst[r*p.cols:(r+1)*p.cols])
		if err := apply(p.row, line); err != nil {
			return fmt.Errorf("fft2: row transform failed: %w", err)
		}
		copy(dst[r*p.cols:(r+1)*p.cols], line)
	}

	line = p.line[:p.rows]
	for c := 0; c < p.cols; c++ {
		for r := 0; r < p.rows; r++ {
			line[r] = dst[r*p.cols+c]
		}
		if err := apply(p.col, line); err != nil {
			return fmt.Errorf("fft2: column transform failed: %w", err)
		}
		for r := 0; r < p.rows; r++ {
			dst[r*p.cols+c] = line[r]
		}
	}
	return nil
}

// ForwardReal transforms real row-major data.
func ForwardReal(data []float64, rows, cols int) ([]complex128, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d != %d*%d", errShape, len(data), rows, cols)
	}
	plan, err := NewPlan(rows, cols)
	if err != nil {
		return nil, err
	}
	buf := make([]complex128, len(data))
	for i, v := range data {
		buf[i] = complex(v, 0)
	}
	if err := plan.Forward(buf, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Wavenumbers returns the angular wavenumbers 2π·m/(n·d) of an n-point
// transform with sample spacing d, in transform order (0, 1, ..., -1).
func Wavenumbers(n int, d float64) []float64 {
	out := make([]float64, n)
	dk := 2 * math.Pi / (float64(n) * d)
	for i := range out {
		m := i
		if i > (n-1)/2 {
			m = i - n
		}
		out[i] = float64(m) * dk
	}
	return out
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
