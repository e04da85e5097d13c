package batch

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-curie/grid"
	"github.com/cwbudde/algo-curie/model"
)

// Estimate is the outcome for one centroid.
type Estimate struct {
	Point  grid.Point
	Status Status
	Err    error

	// Params is the fitted point for FitAll and the mean of the draws
	// otherwise. Std is zero for FitAll.
	Params   model.Params
	Std      model.Params
	Curie    float64
	CurieStd float64

	Samples    int     // draws behind Params, 1 for FitAll
	Acceptance float64 // SampleAll only
}

// Result holds one Estimate per lattice point, in lattice order.
type Result struct {
	Lattice   grid.Lattice
	Estimates []Estimate
}

// Maps are lattice-shaped parameter grids. Cells whose centroid did not
// finish with StatusOK are NaN.
type Maps struct {
	Beta, Zt, Dz, C *mat.Dense
	Curie, CurieStd *mat.Dense
}

// Maps lays the estimates out on the lattice.
func (r *Result) Maps() Maps {
	n := len(r.Estimates)
	cols := make([][]float64, 6)
	for i := range cols {
		cols[i] = make([]float64, n)
	}
	for i, e := range r.Estimates {
		v := []float64{e.Params.Beta, e.Params.Zt, e.Params.Dz, e.Params.C, e.Curie, e.CurieStd}
		for j := range cols {
			if e.Status != StatusOK {
				cols[j][i] = math.NaN()
				continue
			}
			cols[j][i] = v[j]
		}
	}
	return Maps{
		Beta:     r.Lattice.Reshape(cols[0]),
		Zt:       r.Lattice.Reshape(cols[1]),
		Dz:       r.Lattice.Reshape(cols[2]),
		C:        r.Lattice.Reshape(cols[3]),
		Curie:    r.Lattice.Reshape(cols[4]),
		CurieStd: r.Lattice.Reshape(cols[5]),
	}
}

// Counts tallies estimates by status.
func (r *Result) Counts() map[Status]int {
	out := make(map[Status]int)
	for _, e := range r.Estimates {
		out[e.Status]++
	}
	return out
}
