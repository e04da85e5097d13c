package model

import (
	"fmt"
	"math"
)

// Parameter names one of the four model parameters.
type Parameter int

const (
	Beta Parameter = iota
	Zt
	Dz
	C
)

// NumParams is the dimension of the parameter space.
const NumParams = 4

var parameterNames = [NumParams]string{"beta", "zt", "dz", "C"}

// Parameters lists all parameters in vector order.
func Parameters() []Parameter {
	return []Parameter{Beta, Zt, Dz, C}
}

func (p Parameter) String() string {
	if p < 0 || int(p) >= NumParams {
		return fmt.Sprintf("Parameter(%d)", int(p))
	}
	return parameterNames[p]
}

// ParseParameter maps a name such as "beta", "zt", "dz" or "C" to its Parameter.
func ParseParameter(name string) (Parameter, error) {
	for i, n := range parameterNames {
		if n == name {
			return Parameter(i), nil
		}
	}
	return 0, invalidf("unknown parameter %q", name)
}

// Params is the 4-tuple (β, z_t, Δz, C) of the Bouligand spectrum.
type Params struct {
	Beta float64 // fractal exponent
	Zt   float64 // depth to top of the magnetic layer
	Dz   float64 // layer thickness
	C    float64 // additive log-power offset
}

// Get returns the value of parameter q.
func (p Params) Get(q Parameter) float64 {
	switch q {
	case Beta:
		return p.Beta
	case Zt:
		return p.Zt
	case Dz:
		return p.Dz
	case C:
		return p.C
	default:
		return math.NaN()
	}
}

// Set assigns v to parameter q. Unknown parameters are ignored.
func (p *Params) Set(q Parameter, v float64) {
	switch q {
	case Beta:
		p.Beta = v
	case Zt:
		p.Zt = v
	case Dz:
		p.Dz = v
	case C:
		p.C = v
	}
}

// Vector returns the parameters in [Parameters] order.
func (p Params) Vector() []float64 {
	return []float64{p.Beta, p.Zt, p.Dz, p.C}
}

// FromVector builds Params from a slice in [Parameters] order.
// It panics if len(v) != NumParams.
func FromVector(v []float64) Params {
	if len(v) != NumParams {
		panic(fmt.Sprintf("model: parameter vector length %d, want %d", len(v), NumParams))
	}
	return Params{Beta: v[0], Zt: v[1], Dz: v[2], C: v[3]}
}

// CurieDepth returns the depth to the base of the magnetic layer, z_t + Δz.
func (p Params) CurieDepth() float64 {
	return p.Zt + p.Dz
}

// Validate checks the parameters against the domain of the Bouligand law.
func (p Params) Validate() error {
	for _, q := range Parameters() {
		v := p.Get(q)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidf("%s is not finite: %v", q, v)
		}
	}
	if p.Dz < 0 {
		return invalidf("dz must be >= 0: %g", p.Dz)
	}
	if p.Beta <= -1 {
		return invalidf("beta must be > -1: %g", p.Beta)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("beta=%.4g zt=%.4g dz=%.4g C=%.4g", p.Beta, p.Zt, p.Dz, p.C)
}
