package testutil

import (
	"math"
	"math/rand/v2"
)

// NoiseField returns rows*cols uniform noise in [-amplitude, amplitude]
// from a fixed seed, row-major.
func NoiseField(seed uint64, amplitude float64, rows, cols int) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, rows*cols)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// GaussianField returns rows*cols standard-normal samples scaled by sigma.
func GaussianField(seed uint64, sigma float64, rows, cols int) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, rows*cols)
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// PlaneWave returns cos(kx·x + ky·y) sampled on a unit-spaced rows×cols grid.
func PlaneWave(kx, ky float64, rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[r*cols+c] = math.Cos(kx*float64(c) + ky*float64(r))
		}
	}
	return out
}

// Constant returns n copies of value.
func Constant(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Rows splits row-major data into a [][]float64 view with cols columns.
func Rows(data []float64, cols int) [][]float64 {
	out := make([][]float64, len(data)/cols)
	for r := range out {
		out[r] = data[r*cols : (r+1)*cols]
	}
	return out
}
