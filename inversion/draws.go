package inversion

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-curie/model"
)

// Draws is a set of parameter samples, either posterior draws from a chain
// or refits from a sensitivity run.
type Draws struct {
	Samples []model.Params
	Failed  int // refits that did not converge; always 0 for chains
}

// Len returns the number of samples.
func (d Draws) Len() int { return len(d.Samples) }

// Column returns the values of parameter p across all samples.
func (d Draws) Column(p model.Parameter) []float64 {
	out := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		out[i] = s.Get(p)
	}
	return out
}

// CurieDepths returns z_t + Δz for each sample.
func (d Draws) CurieDepths() []float64 {
	out := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		out[i] = s.CurieDepth()
	}
	return out
}

// Quantile returns the empirical q-quantile of parameter p.
func (d Draws) Quantile(p model.Parameter, q float64) float64 {
	if d.Len() == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	x := d.Column(p)
	slices.Sort(x)
	return stat.Quantile(q, stat.Empirical, x, nil)
}

// Summary holds per-parameter means and standard deviations.
type Summary struct {
	N        int
	Mean     model.Params
	Std      model.Params
	Curie    float64
	CurieStd float64
}

// Summary computes means and sample standard deviations. With fewer than
// two samples the deviations are zero; with none everything is NaN.
func (d Draws) Summary() Summary {
	s := Summary{N: d.Len()}
	if s.N == 0 {
		nan := math.NaN()
		s.Mean = model.Params{Beta: nan, Zt: nan, Dz: nan, C: nan}
		s.Std = s.Mean
		s.Curie, s.CurieStd = nan, nan
		return s
	}
	for _, p := range model.Parameters() {
		mean, std := meanStd(d.Column(p))
		s.Mean.Set(p, mean)
		s.Std.Set(p, std)
	}
	s.Curie, s.CurieStd = meanStd(d.CurieDepths())
	return s
}

func meanStd(x []float64) (mean, std float64) {
	if len(x) < 2 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
