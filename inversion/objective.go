package inversion

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/prior"
	"github.com/cwbudde/algo-curie/spectrum"
)

// objective is the negative log posterior of a radial spectrum. It keeps
// a scratch buffer and must not be shared between goroutines.
type objective struct {
	k      []float64
	obs    []float64
	invVar []float64
	reg    *prior.Registry
	buf    []float64
}

func newObjective(s spectrum.Radial, reg *prior.Registry) (*objective, error) {
	n := s.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty spectrum", model.ErrInvalidParameter)
	}
	if len(s.Power) != n || len(s.Variance) != n || (s.Count != nil && len(s.Count) != n) {
		return nil, fmt.Errorf("%w: spectrum slices have lengths %d/%d/%d/%d",
			model.ErrInvalidParameter, n, len(s.Power), len(s.Variance), len(s.Count))
	}

	o := &objective{reg: reg}
	for i, v := range s.Variance {
		// A single-pixel bin has no sample variance to weight it by.
		if s.Count != nil && s.Count[i] == 1 {
			continue
		}
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: bin %d has variance %v", model.ErrInvalidParameter, i, v)
		}
		if math.IsNaN(s.Power[i]) || math.IsInf(s.Power[i], 0) {
			return nil, fmt.Errorf("%w: bin %d has log power %v", model.ErrInvalidParameter, i, s.Power[i])
		}
		o.k = append(o.k, s.K[i])
		o.obs = append(o.obs, s.Power[i])
		o.invVar = append(o.invVar, 1/v)
	}
	if len(o.k) == 0 {
		return nil, fmt.Errorf("%w: no bin has more than one pixel", model.ErrInvalidParameter)
	}
	o.buf = make([]float64, len(o.k))
	return o, nil
}

// misfit returns ½Σ(Φ(k_i; p) - obs_i)²/σ_i², or +Inf when the model
// cannot be evaluated at p.
func (o *objective) misfit(p model.Params) float64 {
	if err := model.Spectrum(o.buf, o.k, p); err != nil {
		return math.Inf(1)
	}
	sum := 0.0
	for i, v := range o.buf {
		d := v - o.obs[i]
		sum += d * d * o.invVar[i]
	}
	if math.IsNaN(sum) {
		return math.Inf(1)
	}
	return 0.5 * sum
}

// negLogPosterior is misfit minus the log prior.
func (o *objective) negLogPosterior(p model.Params) float64 {
	lp := o.reg.LogPrior(p)
	if math.IsInf(lp, -1) {
		return math.Inf(1)
	}
	return o.misfit(p) - lp
}
