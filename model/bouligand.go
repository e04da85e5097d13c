package model

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mathext"
)

const (
	// Above this k·Δz the Bessel term is below float64 resolution of the
	// cosh term and the asymptotic form is used.
	asymptoticThreshold = 30.0

	legendreOrder = 12
	segmentWidth  = 1.0

	// Below ln(x²/4) - tailCut the factor 1-exp(-x²/4t) equals 1 in float64.
	tailCut = 4.0
)

var (
	legendreX = make([]float64, legendreOrder)
	legendreW = make([]float64, legendreOrder)
)

func init() {
	quad.Legendre{}.FixedLocations(legendreX, legendreW, -1, 1)
}

// Bouligand returns the natural-log radial power spectrum of a magnetised
// layer (Bouligand et al., 2009) at wavenumbers k, with zero offset C:
//
//	Φ(k) = -2k·z_t - (β-1)·ln k - kΔz + ln A
//	A    = √π/Γ(1+β/2) · [½·cosh(kΔz)·Γ(ν) - K_ν(kΔz)·(kΔz/2)^ν],  ν = (1+β)/2
//
// Every k must be positive and finite.
func Bouligand(beta, zt, dz float64, k []float64) ([]float64, error) {
	out := make([]float64, len(k))
	if err := Spectrum(out, k, Params{Beta: beta, Zt: zt, Dz: dz}); err != nil {
		return nil, err
	}
	return out, nil
}

// Spectrum writes the Bouligand log-power for p (including the offset p.C)
// into dst. It does not allocate.
func Spectrum(dst, k []float64, p Params) error {
	if len(dst) != len(k) {
		return errLengthMismatch
	}
	if err := p.Validate(); err != nil {
		return err
	}

	nu := 0.5 * (1 + p.Beta)
	lgNu, _ := math.Lgamma(nu)
	lgHalf, _ := math.Lgamma(1 + 0.5*p.Beta)
	prefactor := 0.5*math.Log(math.Pi) - lgHalf

	for i, kh := range k {
		if !(kh > 0) || math.IsInf(kh, 0) {
			return invalidf("wavenumber %d must be positive and finite: %v", i, kh)
		}
		x := kh * p.Dz
		dst[i] = p.C - 2*kh*p.Zt - (p.Beta-1)*math.Log(kh) - x + prefactor + logLayerTerm(x, nu, lgNu)
	}
	return nil
}

// Maus returns the infinite-thickness spectrum of Maus and Dimri (1995),
// -2k·z_t - (β-1)·ln k. It is the large-Δz limit of [Bouligand] up to a
// β-dependent constant.
func Maus(beta, zt float64, k []float64) []float64 {
	out := make([]float64, len(k))
	for i, kh := range k {
		out[i] = -2*kh*zt - (beta-1)*math.Log(kh)
	}
	return out
}

// logLayerTerm returns ln(½·cosh(x)·Γ(ν) - K_ν(x)·(x/2)^ν).
//
// The difference is rewritten as Γ(ν)·sinh²(x/2) + ½·∫e^{-t}t^{ν-1}(1-e^{-x²/4t})dt
// so both terms are non-negative and no cancellation occurs for small x.
func logLayerTerm(x, nu, lgNu float64) float64 {
	if x == 0 {
		return math.Inf(-1)
	}
	if x > asymptoticThreshold {
		return lgNu - 2*math.Ln2 + x + 2*math.Log1p(-math.Exp(-x))
	}

	sh := math.Sinh(0.5 * x)
	return math.Log(math.Exp(lgNu)*sh*sh + 0.5*layerIntegral(x, nu))
}

// layerIntegral evaluates ∫₀^∞ e^{-t} t^{ν-1} (1 - e^{-q/t}) dt, q = x²/4,
// in s = ln t. The part below s1 is a lower incomplete gamma function; the
// rest is summed with fixed Gauss-Legendre panels.
func layerIntegral(x, nu float64) float64 {
	q := 0.25 * x * x
	s1 := math.Log(q) - tailCut

	total := math.Gamma(nu) * mathext.GammaIncReg(nu, math.Exp(s1))

	sHi := math.Max(math.Log(60+4*nu), s1+segmentWidth)
	panels := int(math.Ceil((sHi - s1) / segmentWidth))
	half := 0.5 * (sHi - s1) / float64(panels)

	for j := 0; j < panels; j++ {
		mid := s1 + half*float64(2*j+1)
		sum := 0.0
		for i, node := range legendreX {
			s := mid + half*node
			t := math.Exp(s)
			sum += legendreW[i] * math.Exp(nu*s-t) * -math.Expm1(-q/t)
		}
		total += half * sum
	}
	return total
}
