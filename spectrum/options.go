package spectrum

import "github.com/cwbudde/algo-curie/taper"

// Option configures an Estimator.
type Option func(*config)

type config struct {
	taper     taper.Type
	taperOpts []taper.Option
	exponent  float64
	scale     float64
	minCount  int
	sector    float64
	demean    bool
}

func defaultConfig() config {
	return config{
		taper:    taper.TypeHann,
		exponent: 2,
		scale:    1,
		minCount: 2,
		sector:   5,
	}
}

// WithTaper selects the taper applied before the transform.
func WithTaper(t taper.Type, opts ...taper.Option) Option {
	return func(c *config) {
		c.taper = t
		c.taperOpts = opts
	}
}

// WithoutTaper disables tapering.
func WithoutTaper() Option {
	return func(c *config) {
		c.taper = taper.TypeNone
		c.taperOpts = nil
	}
}

// WithPowerExponent sets p in |F|^p. The default is 2.
func WithPowerExponent(p float64) Option {
	return func(c *config) {
		if p > 0 {
			c.exponent = p
		}
	}
}

// WithScale multiplies the grid spacing before wavenumbers are computed,
// e.g. 1e-3 for metres to kilometres.
func WithScale(s float64) Option {
	return func(c *config) {
		if s > 0 {
			c.scale = s
		}
	}
}

// WithMinBinCount sets the number of pixels a bin needs to be reported.
// With n = 1, single-pixel bins are reported with zero variance; fits
// ignore them.
func WithMinBinCount(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.minCount = n
		}
	}
}

// WithSectorWidth sets the azimuthal sector width in degrees.
func WithSectorWidth(deg float64) Option {
	return func(c *config) {
		if deg > 0 && deg <= 180 {
			c.sector = deg
		}
	}
}

// WithDemean subtracts the window mean before tapering.
func WithDemean() Option {
	return func(c *config) {
		c.demean = true
	}
}
