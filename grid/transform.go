package grid

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-curie/internal/fft2"
)

// UpwardContinue returns the field continued upward by height h ≥ 0
// (same unit as the grid spacing), attenuating each wavenumber by e^{-|k|h}.
func (g *Grid) UpwardContinue(h float64) (*Grid, error) {
	if !(h >= 0) || math.IsInf(h, 0) {
		return nil, fmt.Errorf("%w: continuation height must be >= 0: %v", ErrInvalidGrid, h)
	}
	return g.filter(func(kx, ky float64) complex128 {
		return complex(math.Exp(-math.Hypot(kx, ky)*h), 0)
	})
}

// ReduceToPole transforms the anomaly as if it were measured at the
// magnetic pole. inc and dec are the geomagnetic field inclination and
// declination in degrees; minc and mdec give the magnetisation direction
// (pass the field direction for induced magnetisation). x is east and y is
// north. The DC term is removed.
func (g *Grid) ReduceToPole(inc, dec, minc, mdec float64) (*Grid, error) {
	f := directionCosines(inc, dec)
	m := directionCosines(minc, mdec)
	return g.filter(func(kx, ky float64) complex128 {
		k := math.Hypot(kx, ky)
		if k == 0 {
			return 0
		}
		thetaF := complex(f[2], (f[0]*kx+f[1]*ky)/k)
		thetaM := complex(m[2], (m[0]*kx+m[1]*ky)/k)
		den := thetaF * thetaM
		if real(den)*real(den)+imag(den)*imag(den) < 1e-24 {
			return 0
		}
		return 1 / den
	})
}

// directionCosines returns (east, north, down) components of a unit vector.
func directionCosines(incDeg, decDeg float64) [3]float64 {
	inc := incDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180
	return [3]float64{
		math.Cos(inc) * math.Sin(dec),
		math.Cos(inc) * math.Cos(dec),
		math.Sin(inc),
	}
}

func (g *Grid) filter(response func(kx, ky float64) complex128) (*Grid, error) {
	plan, err := fft2.NewPlan(g.rows, g.cols)
	if err != nil {
		return nil, err
	}

	buf := make([]complex128, len(g.data))
	for i, v := range g.data {
		buf[i] = complex(v, 0)
	}
	if err := plan.Forward(buf, buf); err != nil {
		return nil, err
	}

	kx := fft2.Wavenumbers(g.cols, g.dx)
	ky := fft2.Wavenumbers(g.rows, g.dy)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			buf[r*g.cols+c] *= response(kx[c], ky[r])
		}
	}

	if err := plan.Inverse(buf, buf); err != nil {
		return nil, err
	}
	out := make([]float64, len(buf))
	for i, v := range buf {
		out[i] = real(v)
	}
	return g.withData(out), nil
}
