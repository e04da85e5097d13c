// Package synth generates synthetic anomaly grids whose power spectrum
// follows the Bouligand law, for round-trip tests and demonstrations.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/cwbudde/algo-curie/grid"
	"github.com/cwbudde/algo-curie/internal/fft2"
	"github.com/cwbudde/algo-curie/model"
)

var errShape = errors.New("synth: invalid shape")

// Option configures Field.
type Option func(*config)

type config struct {
	gaussian bool
	x0, y0   float64
}

// WithGaussianAmplitudes keeps the Rayleigh-distributed amplitudes of the
// underlying white noise. Estimated log power then scatters around
// Φ - γ (Euler's constant) instead of matching Φ pixel by pixel.
func WithGaussianAmplitudes() Option {
	return func(c *config) {
		c.gaussian = true
	}
}

// WithOrigin places the lower-left node at (x0, y0).
func WithOrigin(x0, y0 float64) Option {
	return func(c *config) {
		c.x0, c.y0 = x0, y0
	}
}

// Field returns a rows×cols grid with spacing dx in both directions whose
// Fourier coefficients have random phase and modulus √(rows·cols·e^Φ(|k|)).
// An untapered periodogram of the full grid therefore reproduces Φ at
// every non-zero wavenumber. The mean is zero.
func Field(rows, cols int, dx float64, p model.Params, rng *rand.Rand, opts ...Option) (*grid.Grid, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: %dx%d", errShape, rows, cols)
	}
	if !(dx > 0) || math.IsInf(dx, 0) {
		return nil, fmt.Errorf("%w: spacing %v", errShape, dx)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random generator", model.ErrInvalidParameter)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := rows * cols
	noise := make([]float64, n)
	for i := range noise {
		noise[i] = rng.NormFloat64()
	}
	coeffs, err := fft2.ForwardReal(noise, rows, cols)
	if err != nil {
		return nil, err
	}

	kx := fft2.Wavenumbers(cols, dx)
	ky := fft2.Wavenumbers(rows, dx)
	k := make([]float64, 0, n-1)
	for r := range rows {
		for c := range cols {
			if r == 0 && c == 0 {
				continue
			}
			k = append(k, math.Hypot(kx[c], ky[r]))
		}
	}
	phi := make([]float64, len(k))
	if err := model.Spectrum(phi, k, p); err != nil {
		return nil, err
	}

	coeffs[0] = 0
	norm := 0.5 * math.Log(float64(n))
	for i, v := range phi {
		j := i + 1
		amp := math.Exp(0.5*v + norm)
		if cfg.gaussian {
			coeffs[j] *= complex(amp/math.Sqrt(float64(n)), 0)
			continue
		}
		if m := cmplx.Abs(coeffs[j]); m > 0 {
			coeffs[j] *= complex(amp/m, 0)
		} else {
			coeffs[j] = complex(amp, 0)
		}
	}

	plan, err := fft2.NewPlan(rows, cols)
	if err != nil {
		return nil, err
	}
	if err := plan.Inverse(coeffs, coeffs); err != nil {
		return nil, err
	}
	data := make([]float64, n)
	for i, v := range coeffs {
		data[i] = real(v)
	}

	ext := grid.Extent{
		XMin: cfg.x0,
		XMax: cfg.x0 + float64(cols-1)*dx,
		YMin: cfg.y0,
		YMax: cfg.y0 + float64(rows-1)*dx,
	}
	return grid.New(data, rows, cols, ext)
}
