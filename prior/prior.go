// Package prior holds per-parameter prior distributions used by the
// spectral fitter and the posterior sampler.
package prior

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-curie/model"
)

var errNilDistribution = errors.New("prior: nil distribution")

// Distribution is a univariate log density. Every gonum distuv
// distribution satisfies it.
type Distribution interface {
	LogProb(x float64) float64
}

// Normal returns a Gaussian prior N(mu, sigma²).
func Normal(mu, sigma float64) Distribution {
	return distuv.Normal{Mu: mu, Sigma: sigma}
}

// Uniform returns a flat prior on [lo, hi].
func Uniform(lo, hi float64) Distribution {
	return distuv.Uniform{Min: lo, Max: hi}
}

// Registry maps model parameters to priors. Parameters without a prior
// contribute nothing to the log prior. A Registry is safe for concurrent
// use; the zero value is empty and ready.
type Registry struct {
	mu     sync.RWMutex
	priors map[model.Parameter]Distribution
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add sets the prior for p, replacing any previous one.
func (r *Registry) Add(p model.Parameter, d Distribution) error {
	if d == nil {
		return fmt.Errorf("%w for %s", errNilDistribution, p)
	}
	if int(p) < 0 || int(p) >= model.NumParams {
		return fmt.Errorf("%w: unknown parameter %d", model.ErrInvalidParameter, int(p))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.priors == nil {
		r.priors = make(map[model.Parameter]Distribution, model.NumParams)
	}
	r.priors[p] = d
	return nil
}

// Remove drops the prior for p.
func (r *Registry) Remove(p model.Parameter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.priors, p)
}

// Reset removes all priors.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.priors = nil
}

// Get returns the prior registered for p.
func (r *Registry) Get(p model.Parameter) (Distribution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.priors[p]
	return d, ok
}

// Len returns the number of registered priors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.priors)
}

// Snapshot returns an independent copy. Later changes to r do not affect
// the copy.
func (r *Registry) Snapshot() *Registry {
	if r == nil {
		return NewRegistry()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{priors: maps.Clone(r.priors)}
}

// LogPrior returns Σ log prior(p_i) over registered parameters. A nil
// registry yields 0.
func (r *Registry) LogPrior(p model.Params) float64 {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := 0.0
	for param, d := range r.priors {
		sum += d.LogProb(p.Get(param))
	}
	if math.IsNaN(sum) {
		return math.Inf(-1)
	}
	return sum
}
