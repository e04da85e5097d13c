package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-curie/grid"
	"github.com/cwbudde/algo-curie/inversion"
	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/prior"
	"github.com/cwbudde/algo-curie/spectrum"
)

var errConfig = errors.New("batch: invalid config")

// Config describes a batch run.
type Config struct {
	Window  float64       // physical window size
	Workers int           // ≤ 0 means GOMAXPROCS
	Seed    uint64        // base seed for per-centroid generators
	Timeout time.Duration // per centroid, 0 for none

	Initial model.Params // starting point of every fit
	Scale   model.Params // proposal scale for SampleAll
	NSim    int          // chain length or number of refits
	Burnin  int          // SampleAll only

	// KMin and KMax restrict fitting to a wavenumber band; zero means
	// unrestricted.
	KMin, KMax float64
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithEstimator sets the spectral estimator. The default demeans and
// applies a Hann taper.
func WithEstimator(e *spectrum.Estimator) Option {
	return func(r *Runner) {
		if e != nil {
			r.est = e
		}
	}
}

// WithRegistry sets the priors. The registry is snapshotted at the start
// of every run.
func WithRegistry(reg *prior.Registry) Option {
	return func(r *Runner) {
		r.reg = reg
	}
}

// WithFitOptions passes options to every Fitter and Sampler.
func WithFitOptions(opts ...inversion.Option) Option {
	return func(r *Runner) {
		r.fitOpts = append(r.fitOpts, opts...)
	}
}

// Runner executes batch operations. It is safe to call its methods
// concurrently.
type Runner struct {
	cfg     Config
	log     *zap.Logger
	est     *spectrum.Estimator
	reg     *prior.Registry
	fitOpts []inversion.Option
}

// NewRunner validates cfg and returns a Runner.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if !(cfg.Window > 0) {
		return nil, fmt.Errorf("%w: window %v", errConfig, cfg.Window)
	}
	if cfg.Timeout < 0 || cfg.NSim < 0 || cfg.Burnin < 0 {
		return nil, fmt.Errorf("%w: negative timeout, nsim or burnin", errConfig)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	r := &Runner{
		cfg: cfg,
		log: zap.NewNop(),
		est: spectrum.NewEstimator(spectrum.WithDemean()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the normalised configuration.
func (r *Runner) Config() Config { return r.cfg }

// task computes one centroid's estimate from its spectrum.
type task func(s spectrum.Radial, rng *rand.Rand, reg *prior.Registry) (Estimate, error)

// FitAll computes the MAP estimate at every centroid.
func (r *Runner) FitAll(ctx context.Context, g *grid.Grid, lat grid.Lattice) (*Result, error) {
	return r.run(ctx, "fit", g, lat, func(s spectrum.Radial, _ *rand.Rand, reg *prior.Registry) (Estimate, error) {
		res, err := inversion.NewFitter(reg, r.fitOpts...).Fit(s, r.cfg.Initial)
		if err != nil {
			return Estimate{}, err
		}
		return Estimate{
			Params:  res.Params,
			Curie:   res.Params.CurieDepth(),
			Samples: 1,
		}, nil
	})
}

// SampleAll runs a Metropolis-Hastings chain of Config.NSim steps at every
// centroid, started from the MAP estimate, and reports the posterior mean
// and standard deviation after Config.Burnin steps.
func (r *Runner) SampleAll(ctx context.Context, g *grid.Grid, lat grid.Lattice) (*Result, error) {
	if r.cfg.NSim <= 0 || r.cfg.Burnin >= r.cfg.NSim {
		return nil, fmt.Errorf("%w: nsim=%d burnin=%d", errConfig, r.cfg.NSim, r.cfg.Burnin)
	}
	return r.run(ctx, "sample", g, lat, func(s spectrum.Radial, rng *rand.Rand, reg *prior.Registry) (Estimate, error) {
		fit, err := inversion.NewFitter(reg, r.fitOpts...).Fit(s, r.cfg.Initial)
		if err != nil {
			return Estimate{}, err
		}
		chain, err := inversion.NewSampler(reg, rng, r.fitOpts...).
			Sample(s, fit.Params, r.cfg.NSim, r.cfg.Burnin, r.cfg.Scale)
		if err != nil {
			return Estimate{}, err
		}
		e := fromDraws(chain.Posterior(r.cfg.Burnin))
		e.Acceptance = chain.AcceptanceRate()
		return e, nil
	})
}

// SensitivityAll refits Config.NSim perturbed spectra at every centroid,
// starting from the MAP estimate.
func (r *Runner) SensitivityAll(ctx context.Context, g *grid.Grid, lat grid.Lattice) (*Result, error) {
	if r.cfg.NSim <= 0 {
		return nil, fmt.Errorf("%w: nsim=%d", errConfig, r.cfg.NSim)
	}
	return r.run(ctx, "sensitivity", g, lat, func(s spectrum.Radial, rng *rand.Rand, reg *prior.Registry) (Estimate, error) {
		fitter := inversion.NewFitter(reg, r.fitOpts...)
		fit, err := fitter.Fit(s, r.cfg.Initial)
		if err != nil {
			return Estimate{}, err
		}
		draws, err := inversion.NewSensitivity(fitter, rng).Run(s, fit.Params, r.cfg.NSim)
		if err != nil {
			return Estimate{}, err
		}
		return fromDraws(draws), nil
	})
}

func fromDraws(d inversion.Draws) Estimate {
	sum := d.Summary()
	return Estimate{
		Params:   sum.Mean,
		Std:      sum.Std,
		Curie:    sum.Curie,
		CurieStd: sum.CurieStd,
		Samples:  sum.N,
	}
}

func (r *Runner) run(ctx context.Context, op string, g *grid.Grid, lat grid.Lattice, work task) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", errConfig)
	}
	start := time.Now()
	reg := r.reg.Snapshot()
	log := r.log.With(zap.String("op", op), zap.Int("centroids", lat.Len()), zap.Int("workers", r.cfg.Workers))
	log.Info("Starting batch", zap.Float64("window", r.cfg.Window))

	res := &Result{Lattice: lat, Estimates: make([]Estimate, lat.Len())}
	var stragglers sync.WaitGroup
	var eg errgroup.Group
	eg.SetLimit(r.cfg.Workers)

	for i, p := range lat.Points {
		if err := ctx.Err(); err != nil {
			for j := i; j < lat.Len(); j++ {
				res.Estimates[j] = Estimate{Point: lat.Points[j], Status: StatusCanceled, Err: err}
			}
			break
		}
		eg.Go(func() error {
			e := r.centroid(ctx, g, i, p, reg, work, &stragglers)
			res.Estimates[i] = e
			if e.Status != StatusOK {
				log.Debug("Centroid failed",
					zap.Int("index", i),
					zap.Float64("x", p.X),
					zap.Float64("y", p.Y),
					zap.Stringer("status", e.Status),
					zap.Error(e.Err))
			}
			return nil
		})
	}
	_ = eg.Wait()
	stragglers.Wait()

	counts := res.Counts()
	fields := []zap.Field{zap.Duration("elapsed", time.Since(start))}
	for s := StatusOK; s <= StatusFailed; s++ {
		if counts[s] > 0 {
			fields = append(fields, zap.Int(s.String(), counts[s]))
		}
	}
	log.Info("Batch finished", fields...)
	return res, ctx.Err()
}

// centroid extracts, transforms and processes one window. With a timeout
// the work runs on its own goroutine; if it overruns, the centroid is
// marked canceled and the worker moves on while the goroutine is tracked
// in stragglers.
func (r *Runner) centroid(ctx context.Context, g *grid.Grid, i int, p grid.Point, reg *prior.Registry,
	work task, stragglers *sync.WaitGroup,
) Estimate {
	if err := ctx.Err(); err != nil {
		return Estimate{Point: p, Status: StatusCanceled, Err: err}
	}
	compute := func() (Estimate, error) {
		w, err := g.Window(p.X, p.Y, r.cfg.Window)
		if err != nil {
			return Estimate{}, err
		}
		s, err := r.est.Radial(w)
		if err != nil {
			return Estimate{}, err
		}
		if r.cfg.KMin > 0 || r.cfg.KMax > 0 {
			s = s.Band(r.cfg.KMin, r.cfg.KMax)
			if s.Len() == 0 {
				return Estimate{}, fmt.Errorf("%w: no bins in [%g, %g]", spectrum.ErrEmptyBin, r.cfg.KMin, r.cfg.KMax)
			}
		}
		rng := rand.New(rand.NewPCG(r.cfg.Seed, uint64(i)))
		return work(s, rng, reg)
	}

	var (
		e   Estimate
		err error
	)
	if r.cfg.Timeout <= 0 {
		e, err = compute()
	} else {
		e, err = withTimeout(ctx, r.cfg.Timeout, compute, stragglers)
	}
	e.Point = p
	e.Err = err
	e.Status = statusOf(err)
	return e
}

type outcome struct {
	e   Estimate
	err error
}

func withTimeout(ctx context.Context, d time.Duration, fn func() (Estimate, error), stragglers *sync.WaitGroup) (Estimate, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan outcome, 1)
	stragglers.Add(1)
	go func() {
		defer stragglers.Done()
		e, err := fn()
		done <- outcome{e, err}
	}()

	select {
	case o := <-done:
		return o.e, o.err
	case <-ctx.Done():
		return Estimate{}, fmt.Errorf("centroid timed out after %v: %w", d, ctx.Err())
	}
}
