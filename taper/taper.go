package taper

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Type identifies a taper function.
type Type int

const (
	TypeNone Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeTukey
	TypeKaiser
)

var typeNames = map[Type]string{
	TypeNone:     "none",
	TypeHann:     "hann",
	TypeHamming:  "hamming",
	TypeBlackman: "blackman",
	TypeTukey:    "tukey",
	TypeKaiser:   "kaiser",
}

var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Parse maps a taper name (case-insensitive) to its Type. "rectangular" and
// the empty string are accepted as aliases for none.
func Parse(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "rectangular", "boxcar":
		return TypeNone, nil
	case "hanning":
		return TypeHann, nil
	}
	for t, v := range typeNames {
		if v == n {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("%w: %q", errUnknownType, name)
}

// Option configures taper generation.
type Option func(*config)

type config struct {
	alpha    float64
	periodic bool
}

func defaultConfig() config {
	return config{alpha: 0.5}
}

// WithAlpha sets the Tukey taper fraction or the Kaiser beta.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
		}
	}
}

// WithPeriodic selects the periodic form instead of the symmetric one.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns n taper coefficients.
func Generate(t Type, n int, opts ...Option) []float64 {
	if n <= 0 {
		return nil
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = evalTaper(t, samplePosition(i, n, cfg.periodic), cfg)
	}
	return out
}

// Separable returns the row-major outer product of a rows-long and a
// cols-long taper.
func Separable(t Type, rows, cols int, opts ...Option) []float64 {
	wr := Generate(t, rows, opts...)
	wc := Generate(t, cols, opts...)
	if wr == nil || wc == nil {
		return nil
	}

	out := make([]float64, rows*cols)
	for r, a := range wr {
		vecmath.ScaleBlock(out[r*cols:(r+1)*cols], wc, a)
	}
	return out
}

// Apply2D multiplies row-major data in place by the separable taper and
// returns the power gain Σw² of the coefficients. TypeNone leaves data
// untouched and returns rows*cols.
func Apply2D(t Type, data []float64, rows, cols int, opts ...Option) (float64, error) {
	if err := validateShape(len(data), rows, cols); err != nil {
		return 0, err
	}
	if t == TypeNone {
		return float64(rows * cols), nil
	}

	coeffs := Separable(t, rows, cols, opts...)
	vecmath.MulBlockInPlace(data, coeffs)
	return PowerGain(coeffs), nil
}

// PowerGain returns Σw² over coeffs.
func PowerGain(coeffs []float64) float64 {
	return floats.Dot(coeffs, coeffs)
}

func evalTaper(t Type, x float64, cfg config) float64 {
	switch t {
	case TypeNone:
		return 1
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	case TypeTukey:
		return tukeyAt(x, cfg.alpha)
	case TypeKaiser:
		return kaiserAt(x, cfg.alpha)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}
	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0.5
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}
	return float64(n) / den
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}
	if alpha >= 1 {
		return cosineFromCoeffs(x, hannCoeffs)
	}

	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}

func kaiserAt(x, beta float64) float64 {
	if beta <= 0 {
		return 1
	}

	r := 2*x - 1
	term := math.Sqrt(math.Max(0, 1-r*r))
	return besselI0(beta*term) / besselI0(beta)
}

// besselI0 is the power series of the modified Bessel function I0.
func besselI0(x float64) float64 {
	q := 0.25 * x * x
	sum, term := 1.0, 1.0
	for k := 1; k < 500; k++ {
		term *= q / float64(k*k)
		sum += term
		if term < sum*1e-17 {
			break
		}
	}
	return sum
}
