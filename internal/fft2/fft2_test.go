package fft2

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-curie/internal/testutil"
)

func naiveDFT2(data []float64, rows, cols int) []complex128 {
	out := make([]complex128, rows*cols)
	for u := 0; u < rows; u++ {
		for v := 0; v < cols; v++ {
			var sum complex128
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					phase := -2 * math.Pi * (float64(u*r)/float64(rows) + float64(v*c)/float64(cols))
					sum += complex(data[r*cols+c], 0) * cmplx.Exp(complex(0, phase))
				}
			}
			out[u*cols+v] = sum
		}
	}
	return out
}

func TestForwardMatchesNaiveDFT(t *testing.T) {
	for _, shape := range [][2]int{{8, 8}, {7, 7}, {4, 9}, {5, 16}} {
		rows, cols := shape[0], shape[1]
		data := testutil.NoiseField(3, 1, rows, cols)
		got, err := ForwardReal(data, rows, cols)
		require.NoError(t, err)
		want := naiveDFT2(data, rows, cols)
		for i := range want {
			assert.InDelta(t, real(want[i]), real(got[i]), 1e-9, "shape %v re %d", shape, i)
			assert.InDelta(t, imag(want[i]), imag(got[i]), 1e-9, "shape %v im %d", shape, i)
		}
	}
}

func TestInverseRoundTrip(t *testing.T) {
	for _, shape := range [][2]int{{16, 16}, {15, 15}, {32, 12}} {
		rows, cols := shape[0], shape[1]
		data := testutil.GaussianField(11, 2, rows, cols)
		plan, err := NewPlan(rows, cols)
		require.NoError(t, err)

		buf := make([]complex128, len(data))
		for i, v := range data {
			buf[i] = complex(v, 0)
		}
		spec := make([]complex128, len(buf))
		require.NoError(t, plan.Forward(spec, buf))
		back := make([]complex128, len(buf))
		require.NoError(t, plan.Inverse(back, spec))

		for i := range data {
			assert.InDelta(t, data[i], real(back[i]), 1e-10)
			assert.InDelta(t, 0, imag(back[i]), 1e-10)
		}
	}
}

func TestPlaneWavePeak(t *testing.T) {
	rows, cols := 9, 9
	data := testutil.PlaneWave(2*math.Pi*2/float64(cols), 0, rows, cols)
	spec, err := ForwardReal(data, rows, cols)
	require.NoError(t, err)
	// cos splits its energy between (0, 2) and (0, -2).
	assert.InDelta(t, float64(rows*cols)/2, cmplx.Abs(spec[2]), 1e-9)
	assert.InDelta(t, float64(rows*cols)/2, cmplx.Abs(spec[cols-2]), 1e-9)
	assert.InDelta(t, 0, cmplx.Abs(spec[1]), 1e-9)
}

func TestShapeErrors(t *testing.T) {
	_, err := NewPlan(0, 4)
	require.Error(t, err)

	plan, err := NewPlan(2, 2)
	require.NoError(t, err)
	require.ErrorIs(t, plan.Forward(make([]complex128, 3), make([]complex128, 4)), errShape)

	_, err = ForwardReal(make([]float64, 5), 2, 2)
	require.ErrorIs(t, err, errShape)
}

func TestWavenumbers(t *testing.T) {
	k := Wavenumbers(5, 0.5)
	dk := 2 * math.Pi / 2.5
	testutil.RequireSliceNearlyEqual(t, k, []float64{0, dk, 2 * dk, -2 * dk, -dk}, 1e-12)

	k = Wavenumbers(4, 1)
	dk = math.Pi / 2
	testutil.RequireSliceNearlyEqual(t, k, []float64{0, dk, -2 * dk, -dk}, 1e-12)
}
