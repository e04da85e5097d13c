package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-curie/grid"
	"github.com/cwbudde/algo-curie/internal/fft2"
	"github.com/cwbudde/algo-curie/taper"
)

// flatTolerance is the relative value range below which a window is
// treated as constant and has no usable spectrum.
const flatTolerance = 1e-12

// Estimator computes log power spectra of grid windows. It holds no mutable
// state and is safe for concurrent use.
type Estimator struct {
	cfg config
}

// NewEstimator returns an Estimator. The defaults are a Hann taper, p = 2,
// unit scale, two pixels per bin and 5° sectors.
func NewEstimator(opts ...Option) *Estimator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Estimator{cfg: cfg}
}

// Taper returns the configured taper type.
func (e *Estimator) Taper() taper.Type { return e.cfg.taper }

// MinBinCount returns the minimum number of pixels per reported bin.
func (e *Estimator) MinBinCount() int { return e.cfg.minCount }

// periodogram is the binned-ready log power of one window.
type periodogram struct {
	logPower []float64 // row-major, NaN where unusable
	kx, ky   []float64
	rows     int
	cols     int
	dk       float64
	nbins    int
}

// bin returns the annulus index m for |k|, or 0 when k is DC or beyond
// the last bin.
func (p *periodogram) bin(k float64) int {
	if k == 0 {
		return 0
	}
	m := int(math.Round(k / p.dk))
	if m < 1 || m > p.nbins {
		return 0
	}
	return m
}

func (e *Estimator) periodogram(w grid.Window) (*periodogram, error) {
	if w.Rows < 3 || w.Cols < 3 || len(w.Data) != w.Rows*w.Cols {
		return nil, fmt.Errorf("%w: %dx%d with %d values", errBadWindow, w.Rows, w.Cols, len(w.Data))
	}
	if !(w.Dx > 0) || !(w.Dy > 0) {
		return nil, fmt.Errorf("%w: spacing %v x %v", errBadWindow, w.Dx, w.Dy)
	}

	if floats.HasNaN(w.Data) || math.IsInf(floats.Sum(w.Data), 0) {
		return nil, fmt.Errorf("%w: non-finite values", errBadWindow)
	}
	lo, hi := floats.Min(w.Data), floats.Max(w.Data)
	if !(hi-lo > flatTolerance*math.Max(1, math.Max(math.Abs(lo), math.Abs(hi)))) {
		return nil, fmt.Errorf("%w: flat window (range %g)", ErrEmptyBin, hi-lo)
	}

	data := append([]float64(nil), w.Data...)
	if e.cfg.demean {
		mean := stat.Mean(data, nil)
		for i := range data {
			data[i] -= mean
		}
	}
	gain, err := taper.Apply2D(e.cfg.taper, data, w.Rows, w.Cols, e.cfg.taperOpts...)
	if err != nil {
		return nil, err
	}

	coeffs, err := fft2.ForwardReal(data, w.Rows, w.Cols)
	if err != nil {
		return nil, err
	}
	re := make([]float64, len(coeffs))
	im := make([]float64, len(coeffs))
	for i, c := range coeffs {
		re[i] = real(c)
		im[i] = imag(c)
	}
	power := make([]float64, len(coeffs))
	vecmath.Power(power, re, im)

	half := 0.5 * e.cfg.exponent
	norm := half * math.Log(gain)
	for i, v := range power {
		lp := half*math.Log(v) - norm
		if v <= 0 || math.IsNaN(lp) || math.IsInf(lp, 0) {
			lp = math.NaN()
		}
		power[i] = lp
	}

	dx := w.Dx * e.cfg.scale
	dy := w.Dy * e.cfg.scale
	dk := math.Max(2*math.Pi/(float64(w.Cols)*dx), 2*math.Pi/(float64(w.Rows)*dy))
	nyquist := math.Min(math.Pi/dx, math.Pi/dy)
	nbins := int(math.Floor(nyquist/dk + 1e-9))
	if nbins < 1 {
		return nil, fmt.Errorf("%w: spacing %v x %v leaves no wavenumber bin", ErrEmptyBin, dx, dy)
	}

	return &periodogram{
		logPower: power,
		kx:       fft2.Wavenumbers(w.Cols, dx),
		ky:       fft2.Wavenumbers(w.Rows, dy),
		rows:     w.Rows,
		cols:     w.Cols,
		dk:       dk,
		nbins:    nbins,
	}, nil
}

// accumulator gathers per-bin samples.
type accumulator struct {
	k     [][]float64
	power [][]float64
}

func newAccumulator(nbins int) *accumulator {
	return &accumulator{
		k:     make([][]float64, nbins+1),
		power: make([][]float64, nbins+1),
	}
}

func (a *accumulator) add(m int, k, lp float64) {
	a.k[m] = append(a.k[m], k)
	a.power[m] = append(a.power[m], lp)
}

// stats returns the mean |k|, mean log power, sample variance and count
// of bin m.
func (a *accumulator) stats(m int) (k, mean, variance float64, n int) {
	n = len(a.power[m])
	if n == 0 {
		return math.NaN(), math.NaN(), math.NaN(), 0
	}
	k = stat.Mean(a.k[m], nil)
	if n == 1 {
		return k, a.power[m][0], 0, 1
	}
	mean, variance = stat.MeanVariance(a.power[m], nil)
	return k, mean, variance, n
}
