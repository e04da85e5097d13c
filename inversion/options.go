package inversion

import "github.com/cwbudde/algo-curie/model"

// Option configures a Fitter or Sampler.
type Option func(*config)

type config struct {
	maxIter  int
	gradTol  float64
	fixed    [model.NumParams]bool
	fdStep   float64
	acceptTo float64
}

func defaultConfig() config {
	return config{
		maxIter:  500,
		gradTol:  1e-8,
		fdStep:   1e-6,
		acceptTo: 1e-4,
	}
}

// WithMaxIterations bounds the number of major optimiser iterations.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

// WithGradientTolerance sets the gradient infinity-norm at which the
// optimiser stops successfully.
func WithGradientTolerance(tol float64) Option {
	return func(c *config) {
		if tol > 0 {
			c.gradTol = tol
		}
	}
}

// WithFixed holds the given parameters at their starting values.
func WithFixed(params ...model.Parameter) Option {
	return func(c *config) {
		for _, p := range params {
			if int(p) >= 0 && int(p) < model.NumParams {
				c.fixed[p] = true
			}
		}
	}
}

func (c *config) free() []model.Parameter {
	var out []model.Parameter
	for _, p := range model.Parameters() {
		if !c.fixed[p] {
			out = append(out, p)
		}
	}
	return out
}
