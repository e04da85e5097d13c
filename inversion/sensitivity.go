package inversion

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/spectrum"
)

// Sensitivity estimates parameter uncertainty by refitting spectra whose
// log power is perturbed by the per-bin standard deviation.
type Sensitivity struct {
	fitter *Fitter
	rng    *rand.Rand
}

// NewSensitivity returns a Sensitivity that refits with fitter and draws
// perturbations from rng.
func NewSensitivity(fitter *Fitter, rng *rand.Rand) *Sensitivity {
	return &Sensitivity{fitter: fitter, rng: rng}
}

// Run performs nsim perturbed refits from x0. Refits that fail are
// skipped and counted in Draws.Failed; if all of them fail Run returns
// ErrConvergence.
func (s *Sensitivity) Run(sp spectrum.Radial, x0 model.Params, nsim int) (Draws, error) {
	if nsim <= 0 {
		return Draws{}, fmt.Errorf("%w: nsim=%d", model.ErrInvalidParameter, nsim)
	}
	if s.fitter == nil || s.rng == nil {
		return Draws{}, fmt.Errorf("%w: nil fitter or random generator", model.ErrInvalidParameter)
	}
	if _, err := newObjective(sp, nil); err != nil {
		return Draws{}, err
	}

	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: s.rng}
	sigma := sp.Sigma()
	perturbed := sp
	perturbed.Power = make([]float64, sp.Len())

	out := Draws{Samples: make([]model.Params, 0, nsim)}
	var lastErr error
	for range nsim {
		for i, v := range sp.Power {
			perturbed.Power[i] = v + sigma[i]*noise.Rand()
		}
		res, err := s.fitter.Fit(perturbed, x0)
		if err != nil {
			if !errors.Is(err, ErrConvergence) {
				return Draws{}, err
			}
			out.Failed++
			lastErr = err
			continue
		}
		if !finite(res.Params) {
			out.Failed++
			continue
		}
		out.Samples = append(out.Samples, res.Params)
	}
	if out.Len() == 0 {
		if lastErr == nil {
			lastErr = ErrConvergence
		}
		return out, fmt.Errorf("all %d refits failed: %w", nsim, lastErr)
	}
	return out, nil
}

func finite(p model.Params) bool {
	for _, v := range p.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
