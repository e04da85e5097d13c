package testutil

import (
	"math"
	"testing"
)

func TestNoiseFieldReproducible(t *testing.T) {
	a := NoiseField(7, 1, 8, 9)
	b := NoiseField(7, 1, 8, 9)
	if len(a) != 72 {
		t.Fatalf("len = %d, want 72", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at index %d", i)
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("a[%d] = %v out of range", i, a[i])
		}
	}
}

func TestPlaneWaveOrigin(t *testing.T) {
	w := PlaneWave(0.3, 0.1, 4, 5)
	if w[0] != 1 {
		t.Fatalf("w[0] = %v, want 1", w[0])
	}
	if math.Abs(w[1*5+2]-math.Cos(0.3*2+0.1)) > 1e-15 {
		t.Fatalf("unexpected sample %v", w[7])
	}
}

func TestRowsView(t *testing.T) {
	data := Constant(2, 6)
	rows := Rows(data, 3)
	if len(rows) != 2 || len(rows[1]) != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", len(rows), len(rows[1]))
	}
	rows[1][0] = 5
	if data[3] != 5 {
		t.Fatal("Rows must alias the backing slice")
	}
}
