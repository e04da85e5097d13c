package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-curie/grid"
)

// Azimuthal is a log power spectrum binned by |k| within angular sectors.
// Row i of Power and Variance belongs to sector Theta[i], column j to K[j].
// Cells with too few pixels are NaN.
type Azimuthal struct {
	K        []float64 // bin centres m·dk
	Theta    []float64 // sector centres in degrees, [0, 180)
	Power    *mat.Dense
	Variance *mat.Dense
	Count    [][]int
}

// Sector returns the populated bins of sector i as a Radial spectrum.
func (a Azimuthal) Sector(i int) Radial {
	var out Radial
	for j, k := range a.K {
		v := a.Power.At(i, j)
		if math.IsNaN(v) {
			continue
		}
		out.K = append(out.K, k)
		out.Power = append(out.Power, v)
		out.Variance = append(out.Variance, a.Variance.At(i, j))
		out.Count = append(out.Count, a.Count[i][j])
	}
	return out
}

// Azimuthal computes the sector-wise log power spectrum of w. The angle of
// (kx, ky) is folded into [0°, 180°) since the spectrum of a real field is
// point-symmetric.
func (e *Estimator) Azimuthal(w grid.Window) (Azimuthal, error) {
	p, err := e.periodogram(w)
	if err != nil {
		return Azimuthal{}, err
	}

	width := e.cfg.sector
	nTheta := int(math.Ceil(180/width - 1e-9))
	accs := make([]*accumulator, nTheta)
	for i := range accs {
		accs[i] = newAccumulator(p.nbins)
	}

	for r := 0; r < p.rows; r++ {
		for c := 0; c < p.cols; c++ {
			lp := p.logPower[r*p.cols+c]
			if math.IsNaN(lp) {
				continue
			}
			kx, ky := p.kx[c], p.ky[r]
			k := math.Hypot(kx, ky)
			m := p.bin(k)
			if m == 0 {
				continue
			}
			theta := math.Mod(math.Atan2(ky, kx)*180/math.Pi+360, 180)
			s := min(int(theta/width), nTheta-1)
			accs[s].add(m, k, lp)
		}
	}

	out := Azimuthal{
		K:        make([]float64, p.nbins),
		Theta:    make([]float64, nTheta),
		Power:    mat.NewDense(nTheta, p.nbins, nil),
		Variance: mat.NewDense(nTheta, p.nbins, nil),
		Count:    make([][]int, nTheta),
	}
	for j := range out.K {
		out.K[j] = float64(j+1) * p.dk
	}

	populated := 0
	for i, acc := range accs {
		out.Theta[i] = math.Min((float64(i)+0.5)*width, 0.5*(float64(i)*width+180))
		out.Count[i] = make([]int, p.nbins)
		for m := 1; m <= p.nbins; m++ {
			_, mean, variance, n := acc.stats(m)
			out.Count[i][m-1] = n
			if n < e.cfg.minCount {
				mean, variance = math.NaN(), math.NaN()
			} else {
				populated++
			}
			out.Power.Set(i, m-1, mean)
			out.Variance.Set(i, m-1, variance)
		}
	}
	if populated == 0 {
		return Azimuthal{}, fmt.Errorf("%w: %dx%d window at (%.6g, %.6g)", ErrEmptyBin, w.Rows, w.Cols, w.XC, w.YC)
	}
	return out, nil
}
