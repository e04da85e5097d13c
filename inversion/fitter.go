package inversion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/prior"
	"github.com/cwbudde/algo-curie/spectrum"
)

// Result is the outcome of a Fit.
type Result struct {
	Params      model.Params
	Objective   float64 // negative log posterior at Params
	Iterations  int
	Evaluations int
	Status      optimize.Status
}

// Fitter computes maximum a posteriori estimates. It is safe for
// concurrent use provided the registry is not modified during a fit.
type Fitter struct {
	reg *prior.Registry
	cfg config
}

// NewFitter returns a Fitter using the priors in reg, which may be nil.
func NewFitter(reg *prior.Registry, opts ...Option) *Fitter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Fitter{reg: reg, cfg: cfg}
}

// transform maps between model parameters and the unconstrained
// optimisation vector: β, z_t and Δz are optimised as logarithms, C as is.
type transform struct {
	base model.Params
	free []model.Parameter
}

func (t transform) encode(p model.Params) []float64 {
	u := make([]float64, len(t.free))
	for i, q := range t.free {
		v := p.Get(q)
		if q != model.C {
			v = math.Log(v)
		}
		u[i] = v
	}
	return u
}

func (t transform) decode(u []float64) model.Params {
	p := t.base
	for i, q := range t.free {
		v := u[i]
		if q != model.C {
			v = math.Exp(v)
		}
		p.Set(q, v)
	}
	return p
}

// Fit minimises the negative log posterior of s starting from x0. Free
// β, z_t and Δz must be strictly positive in x0.
func (f *Fitter) Fit(s spectrum.Radial, x0 model.Params) (Result, error) {
	if err := x0.Validate(); err != nil {
		return Result{}, err
	}
	tr := transform{base: x0, free: f.cfg.free()}
	for _, q := range tr.free {
		if q != model.C && !(x0.Get(q) > 0) {
			return Result{}, fmt.Errorf("%w: starting %s must be > 0: %g", model.ErrInvalidParameter, q, x0.Get(q))
		}
	}

	obj, err := newObjective(s, f.reg)
	if err != nil {
		return Result{}, err
	}
	if len(tr.free) == 0 {
		return Result{Params: x0, Objective: obj.negLogPosterior(x0), Status: optimize.Success}, nil
	}

	fn := func(u []float64) float64 {
		return obj.negLogPosterior(tr.decode(u))
	}
	u0 := tr.encode(x0)
	if v := fn(u0); math.IsInf(v, 0) || math.IsNaN(v) {
		return Result{}, fmt.Errorf("%w: objective is %v at %s", model.ErrInvalidParameter, v, x0)
	}

	fdSettings := &fd.Settings{Formula: fd.Central, Step: f.cfg.fdStep}
	problem := optimize.Problem{
		Func: fn,
		Grad: func(grad, u []float64) {
			fd.Gradient(grad, fn, u, fdSettings)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   f.cfg.maxIter,
		GradientThreshold: f.cfg.gradTol,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-12,
			Iterations: 25,
		},
	}

	res, err := optimize.Minimize(problem, u0, settings, &optimize.LBFGS{})
	if res == nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConvergence, err)
	}

	out := Result{
		Params:      tr.decode(res.X),
		Objective:   res.F,
		Iterations:  res.MajorIterations,
		Evaluations: res.FuncEvaluations,
		Status:      res.Status,
	}
	if res.Status == optimize.IterationLimit {
		return out, fmt.Errorf("%w: iteration limit %d reached at %s", ErrConvergence, f.cfg.maxIter, out.Params)
	}
	if err != nil {
		// Line searches often fail right at the optimum because the
		// finite-difference gradient is noisy there.
		grad := fd.Gradient(nil, fn, res.X, fdSettings)
		if floats.Norm(grad, math.Inf(1)) > f.cfg.acceptTo*math.Max(1, math.Abs(res.F)) {
			return out, fmt.Errorf("%w: %v at %s", ErrConvergence, err, out.Params)
		}
	}
	return out, nil
}
