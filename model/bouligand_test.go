package model

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-curie/internal/testutil"
)

func logspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(10, lo+(hi-lo)*float64(i)/float64(n-1))
	}
	return out
}

func TestBouligandZeroBetaClosedForm(t *testing.T) {
	k := logspace(-3, 1, 60)
	for _, tc := range []struct{ zt, dz float64 }{
		{0.5, 5},
		{1, 10},
		{3, 40},
		{2, 200},
	} {
		got, err := Bouligand(0, tc.zt, tc.dz, k)
		if err != nil {
			t.Fatalf("Bouligand: %v", err)
		}
		want := make([]float64, len(k))
		for i, kh := range k {
			want[i] = math.Log(math.Pi/4) + math.Log(kh) - 2*kh*tc.zt + math.Log(-math.Expm1(-2*kh*tc.dz))
		}
		testutil.RequireSliceNearlyEqual(t, got, want, 1e-8)
	}
}

func TestBouligandHalfIntegerOrderClosedForm(t *testing.T) {
	// beta=2 gives nu=3/2, where K_nu is elementary:
	// A = π/4 · [cosh x - (1+x)e^{-x}].
	k := logspace(-2, 0.5, 40)
	zt, dz := 1.5, 8.0
	got, err := Bouligand(2, zt, dz, k)
	if err != nil {
		t.Fatal(err)
	}
	for i, kh := range k {
		x := kh * dz
		a := math.Pi / 4 * (math.Cosh(x) - (1+x)*math.Exp(-x))
		want := -2*kh*zt - math.Log(kh) - x + math.Log(a)
		if math.Abs(got[i]-want) > 1e-8 {
			t.Fatalf("k=%g: got %v, want %v", kh, got[i], want)
		}
	}
}

func TestBouligandMonotoneDecreasing(t *testing.T) {
	k := logspace(-4, 1, 201)
	for _, beta := range []float64{3, 3.5, 4.5} {
		for _, zt := range []float64{0.5, 2} {
			for _, dz := range []float64{5, 20, 50} {
				phi, err := Bouligand(beta, zt, dz, k)
				if err != nil {
					t.Fatal(err)
				}
				for i := 1; i < len(phi); i++ {
					if !(phi[i] < phi[i-1]) {
						t.Fatalf("beta=%g zt=%g dz=%g: phi not decreasing at k=%g (%v >= %v)",
							beta, zt, dz, k[i], phi[i], phi[i-1])
					}
				}
			}
		}
	}
}

func TestBouligandApproachesMausForThickLayers(t *testing.T) {
	k := logspace(-1, 1, 30)
	beta, zt := 3.2, 1.0
	phi, err := Bouligand(beta, zt, 1e4, k)
	if err != nil {
		t.Fatal(err)
	}
	maus := Maus(beta, zt, k)

	lgNu, _ := math.Lgamma(0.5 * (1 + beta))
	lgHalf, _ := math.Lgamma(1 + 0.5*beta)
	offset := 0.5*math.Log(math.Pi) + lgNu - lgHalf - 2*math.Ln2

	for i := range k {
		if d := phi[i] - maus[i] - offset; math.Abs(d) > 1e-9 {
			t.Fatalf("k=%g: bouligand-maus-offset = %v", k[i], d)
		}
	}
}

func TestBouligandContinuousAcrossAsymptoticSwitch(t *testing.T) {
	dz := 10.0
	k := []float64{(asymptoticThreshold - 1e-9) / dz, (asymptoticThreshold + 1e-9) / dz}
	phi, err := Bouligand(2.7, 1, dz, k)
	if err != nil {
		t.Fatal(err)
	}
	if d := math.Abs(phi[1] - phi[0]); d > 1e-7 {
		t.Fatalf("jump across threshold: %v", d)
	}
}

func TestBouligandExtremeWavenumbers(t *testing.T) {
	k := []float64{1e-9, 1e-6, 1e3, 1e5}
	for _, beta := range []float64{-0.5, 0, 1, 3, 5} {
		phi, err := Bouligand(beta, 2, 30, k)
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireFinite(t, phi)
	}
}

func TestBouligandOffset(t *testing.T) {
	k := logspace(-2, 0, 10)
	base, err := Bouligand(3, 1, 10, k)
	if err != nil {
		t.Fatal(err)
	}
	shifted := make([]float64, len(k))
	if err := Spectrum(shifted, k, Params{Beta: 3, Zt: 1, Dz: 10, C: 4.5}); err != nil {
		t.Fatal(err)
	}
	for i := range k {
		if math.Abs(shifted[i]-base[i]-4.5) > 1e-12 {
			t.Fatalf("offset not additive at %d", i)
		}
	}
}

func TestBouligandZeroThickness(t *testing.T) {
	phi, err := Bouligand(3, 1, 0, []float64{0.1, 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range phi {
		if !math.IsInf(v, -1) {
			t.Fatalf("zero thickness should give -Inf log-power, got %v", v)
		}
	}
}

func TestBouligandInvalid(t *testing.T) {
	tests := []struct {
		name         string
		beta, zt, dz float64
		k            []float64
	}{
		{"negative thickness", 3, 1, -0.1, []float64{0.1}},
		{"beta at pole", -1, 1, 10, []float64{0.1}},
		{"nan depth", 3, math.NaN(), 10, []float64{0.1}},
		{"zero wavenumber", 3, 1, 10, []float64{0, 0.1}},
		{"negative wavenumber", 3, 1, 10, []float64{-0.1}},
		{"infinite wavenumber", 3, 1, 10, []float64{math.Inf(1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Bouligand(tc.beta, tc.zt, tc.dz, tc.k)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestSpectrumLengthMismatch(t *testing.T) {
	err := Spectrum(make([]float64, 2), []float64{1}, Params{Beta: 3, Zt: 1, Dz: 1})
	if err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func BenchmarkBouligand(b *testing.B) {
	k := logspace(-2, 0.5, 64)
	dst := make([]float64, len(k))
	p := Params{Beta: 3, Zt: 1, Dz: 20, C: 5}
	b.ReportAllocs()
	for b.Loop() {
		_ = Spectrum(dst, k, p)
	}
}
