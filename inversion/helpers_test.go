package inversion

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/spectrum"
	"github.com/cwbudde/algo-curie/synth"
)

var truth = model.Params{Beta: 3, Zt: 1, Dz: 5, C: 10}

// syntheticSpectrum returns the untapered radial spectrum of a 65×65
// random-phase field generated from truth.
func syntheticSpectrum(t testing.TB) spectrum.Radial {
	t.Helper()
	g, err := synth.Field(65, 65, 1, truth, rand.New(rand.NewPCG(42, 1)))
	require.NoError(t, err)
	w, err := g.Window(32, 32, 64)
	require.NoError(t, err)
	require.Equal(t, 65, w.Cols)

	s, err := spectrum.NewEstimator(spectrum.WithoutTaper()).Radial(w)
	require.NoError(t, err)
	return s
}

// stackedSpectrum averages the radial spectra of n independent 129×129
// fields generated from truth, each estimated over the whole grid with est.
// The variance is that of the mean.
func stackedSpectrum(t testing.TB, est *spectrum.Estimator, n int) spectrum.Radial {
	t.Helper()
	var out spectrum.Radial
	for i := range n {
		g, err := synth.Field(129, 129, 1, truth, rand.New(rand.NewPCG(7, uint64(i))))
		require.NoError(t, err)
		w, err := g.Window(64, 64, 128)
		require.NoError(t, err)
		require.Equal(t, 129, w.Cols)

		s, err := est.Radial(w)
		require.NoError(t, err)
		if i == 0 {
			out = spectrum.Radial{
				K:        s.K,
				Power:    make([]float64, s.Len()),
				Variance: make([]float64, s.Len()),
				Count:    s.Count,
			}
		}
		require.Equal(t, out.Len(), s.Len())
		floats.Add(out.Power, s.Power)
		floats.Add(out.Variance, s.Variance)
	}
	floats.Scale(1/float64(n), out.Power)
	floats.Scale(1/float64(n*n), out.Variance)
	return out
}

// tuneScale halves or doubles scale until short pilot chains accept
// between 15% and 50% of proposals.
func tuneScale(t *testing.T, s spectrum.Radial, x0, scale model.Params, seed uint64) model.Params {
	t.Helper()
	for range 30 {
		chain, err := NewSampler(nil, rand.New(rand.NewPCG(seed, 99))).Sample(s, x0, 400, 0, scale)
		require.NoError(t, err)
		switch acc := chain.AcceptanceRate(); {
		case acc < 0.15:
			scale = scaled(scale, 0.5)
		case acc > 0.5:
			scale = scaled(scale, 2)
		default:
			return scale
		}
	}
	t.Fatalf("proposal scale did not settle, last %s", scale)
	return scale
}

func scaled(p model.Params, f float64) model.Params {
	return model.Params{Beta: p.Beta * f, Zt: p.Zt * f, Dz: p.Dz * f, C: p.C * f}
}
