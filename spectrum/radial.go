package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-curie/grid"
)

// Radial is an isotropically averaged log power spectrum. All slices have
// the same length and K is strictly increasing.
type Radial struct {
	K        []float64 // mean |k| of the pixels in each bin
	Power    []float64 // mean log power
	Variance []float64 // sample variance of the log power
	Count    []int
}

// Len returns the number of bins.
func (r Radial) Len() int { return len(r.K) }

// Sigma returns the standard deviation of each bin.
func (r Radial) Sigma() []float64 {
	out := make([]float64, len(r.Variance))
	for i, v := range r.Variance {
		out[i] = math.Sqrt(v)
	}
	return out
}

// Band returns the bins with kmin ≤ K ≤ kmax. A non-positive kmax means
// no upper limit.
func (r Radial) Band(kmin, kmax float64) Radial {
	var out Radial
	for i, k := range r.K {
		if k < kmin || (kmax > 0 && k > kmax) {
			continue
		}
		out.K = append(out.K, k)
		out.Power = append(out.Power, r.Power[i])
		out.Variance = append(out.Variance, r.Variance[i])
		out.Count = append(out.Count, r.Count[i])
	}
	return out
}

// Radial computes the radially averaged log power spectrum of w.
func (e *Estimator) Radial(w grid.Window) (Radial, error) {
	p, err := e.periodogram(w)
	if err != nil {
		return Radial{}, err
	}

	acc := newAccumulator(p.nbins)
	for r := 0; r < p.rows; r++ {
		for c := 0; c < p.cols; c++ {
			lp := p.logPower[r*p.cols+c]
			if math.IsNaN(lp) {
				continue
			}
			k := math.Hypot(p.kx[c], p.ky[r])
			if m := p.bin(k); m > 0 {
				acc.add(m, k, lp)
			}
		}
	}

	var out Radial
	for m := 1; m <= p.nbins; m++ {
		k, mean, variance, n := acc.stats(m)
		if n < e.cfg.minCount {
			continue
		}
		out.K = append(out.K, k)
		out.Power = append(out.Power, mean)
		out.Variance = append(out.Variance, variance)
		out.Count = append(out.Count, n)
	}
	if out.Len() == 0 {
		return Radial{}, fmt.Errorf("%w: %dx%d window at (%.6g, %.6g)", ErrEmptyBin, w.Rows, w.Cols, w.XC, w.YC)
	}
	return out, nil
}
