package inversion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/spectrum"
)

// Range is a closed wavenumber interval.
type Range struct {
	Min, Max float64
}

func (r Range) contains(k float64) bool { return k >= r.Min && k <= r.Max }

// TanakaResult holds centroid-method depths and their standard errors.
type TanakaResult struct {
	Zt, ZtErr       float64 // depth to top
	Z0, Z0Err       float64 // centroid depth
	Curie, CurieErr float64 // 2·z0 - zt
}

// Tanaka applies the centroid method of Tanaka et al. (1999). Over
// ztRange the slope of ln√Φ against k is -z_t; over z0Range the slope of
// ln(√Φ/k) is -z_0. Each regression needs at least three bins and is
// weighted by the inverse bin variance when all variances are positive.
func Tanaka(s spectrum.Radial, ztRange, z0Range Range) (TanakaResult, error) {
	var (
		res TanakaResult
		err error
	)
	res.Zt, res.ZtErr, err = tanakaSlope(s, ztRange, false)
	if err != nil {
		return TanakaResult{}, fmt.Errorf("top depth: %w", err)
	}
	res.Z0, res.Z0Err, err = tanakaSlope(s, z0Range, true)
	if err != nil {
		return TanakaResult{}, fmt.Errorf("centroid depth: %w", err)
	}
	res.Curie = 2*res.Z0 - res.Zt
	res.CurieErr = math.Hypot(2*res.Z0Err, res.ZtErr)
	return res, nil
}

// tanakaSlope regresses ½Φ (minus ln k when centroid is set) on k within
// r and returns the negated slope and its standard error.
func tanakaSlope(s spectrum.Radial, r Range, centroid bool) (depth, stderr float64, err error) {
	var x, y, w []float64
	weighted := true
	for i, k := range s.K {
		if !r.contains(k) {
			continue
		}
		v := 0.5 * s.Power[i]
		if centroid {
			v -= math.Log(k)
		}
		x = append(x, k)
		y = append(y, v)
		// Var(½Φ) = ¼Var(Φ).
		wi := 0.0
		if i < len(s.Variance) && s.Variance[i] > 0 {
			wi = 4 / s.Variance[i]
		} else {
			weighted = false
		}
		w = append(w, wi)
	}
	if len(x) < 3 {
		return 0, 0, fmt.Errorf("%w: %d bins in [%g, %g], need 3", model.ErrInvalidParameter, len(x), r.Min, r.Max)
	}
	if !weighted {
		w = nil
	}

	alpha, beta := stat.LinearRegression(x, y, w, false)
	if math.IsNaN(beta) {
		return 0, 0, fmt.Errorf("%w: degenerate regression in [%g, %g]", model.ErrInvalidParameter, r.Min, r.Max)
	}

	// Standard error of the slope for weighted least squares.
	mx := stat.Mean(x, w)
	var rss, sxx float64
	for i := range x {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		res := y[i] - alpha - beta*x[i]
		rss += wi * res * res
		sxx += wi * (x[i] - mx) * (x[i] - mx)
	}
	stderr = math.Sqrt(rss / float64(len(x)-2) / sxx)
	return -beta, stderr, nil
}
