package inversion

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/prior"
	"github.com/cwbudde/algo-curie/spectrum"
)

// Chain is the full output of a Metropolis-Hastings run.
type Chain struct {
	Samples      []model.Params
	LogPosterior []float64
	Accepted     int
}

// Len returns the chain length.
func (c Chain) Len() int { return len(c.Samples) }

// AcceptanceRate returns the fraction of accepted proposals.
func (c Chain) AcceptanceRate() float64 {
	if len(c.Samples) == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(len(c.Samples))
}

// Posterior returns the samples after the first burnin entries. burnin is
// clamped to [0, Len()].
func (c Chain) Posterior(burnin int) Draws {
	burnin = max(0, min(burnin, len(c.Samples)))
	return Draws{Samples: append([]model.Params(nil), c.Samples[burnin:]...)}
}

// Sampler draws from the posterior with a Gaussian random walk. A Sampler
// owns its generator and is not safe for concurrent use.
type Sampler struct {
	reg *prior.Registry
	rng *rand.Rand
	cfg config
}

// NewSampler returns a Sampler using the priors in reg (nil for none) and
// the given generator.
func NewSampler(reg *prior.Registry, rng *rand.Rand, opts ...Option) *Sampler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Sampler{reg: reg, rng: rng, cfg: cfg}
}

// inSupport reports whether p lies where the posterior is defined.
func inSupport(p model.Params) bool {
	return p.Beta > -1 && p.Zt >= 0 && p.Dz >= 0
}

// Sample runs nsim Metropolis-Hastings steps from x0. Each step perturbs
// every free parameter by N(0, scale²); rejected proposals repeat the
// current state, so the chain always holds nsim entries.
func (s *Sampler) Sample(sp spectrum.Radial, x0 model.Params, nsim, burnin int, scale model.Params) (Chain, error) {
	if nsim <= 0 || burnin < 0 || burnin >= nsim {
		return Chain{}, fmt.Errorf("%w: nsim=%d burnin=%d", model.ErrInvalidParameter, nsim, burnin)
	}
	if s.rng == nil {
		return Chain{}, fmt.Errorf("%w: nil random generator", model.ErrInvalidParameter)
	}
	if err := x0.Validate(); err != nil {
		return Chain{}, err
	}
	free := s.cfg.free()
	for _, q := range free {
		v := scale.Get(q)
		if !(v >= 0) || math.IsInf(v, 0) {
			return Chain{}, fmt.Errorf("%w: proposal scale for %s must be finite and >= 0: %v", model.ErrInvalidParameter, q, v)
		}
	}

	obj, err := newObjective(sp, s.reg)
	if err != nil {
		return Chain{}, err
	}
	logPost := func(p model.Params) float64 {
		if !inSupport(p) {
			return math.Inf(-1)
		}
		return -obj.negLogPosterior(p)
	}

	cur := x0
	curLP := logPost(cur)
	if math.IsInf(curLP, 0) || math.IsNaN(curLP) {
		return Chain{}, fmt.Errorf("%w: posterior is zero at %s", model.ErrInvalidParameter, x0)
	}

	chain := Chain{
		Samples:      make([]model.Params, 0, nsim),
		LogPosterior: make([]float64, 0, nsim),
	}
	for range nsim {
		prop := cur
		for _, q := range free {
			prop.Set(q, cur.Get(q)+scale.Get(q)*s.rng.NormFloat64())
		}
		if inSupport(prop) {
			lp := logPost(prop)
			if math.Log(s.rng.Float64()) < lp-curLP {
				cur, curLP = prop, lp
				chain.Accepted++
			}
		}
		chain.Samples = append(chain.Samples, cur)
		chain.LogPosterior = append(chain.LogPosterior, curLP)
	}
	return chain, nil
}
