package model

import (
	"errors"
	"testing"
)

func TestParseParameter(t *testing.T) {
	for _, q := range Parameters() {
		got, err := ParseParameter(q.String())
		if err != nil {
			t.Fatalf("ParseParameter(%q): %v", q, err)
		}
		if got != q {
			t.Fatalf("ParseParameter(%q) = %v", q, got)
		}
	}
	if _, err := ParseParameter("depth"); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestParamsVectorAccessors(t *testing.T) {
	p := Params{Beta: 3, Zt: 1, Dz: 20, C: 5}
	v := p.Vector()
	if FromVector(v) != p {
		t.Fatalf("FromVector(Vector()) = %v, want %v", FromVector(v), p)
	}
	for i, q := range Parameters() {
		if p.Get(q) != v[i] {
			t.Fatalf("Get(%v) = %v, want %v", q, p.Get(q), v[i])
		}
	}
	p.Set(Dz, 12)
	if p.CurieDepth() != 13 {
		t.Fatalf("CurieDepth = %v, want 13", p.CurieDepth())
	}
}

func TestParamsValidate(t *testing.T) {
	if err := (Params{Beta: 3, Zt: 1, Dz: 0}).Validate(); err != nil {
		t.Fatalf("zero thickness must be valid: %v", err)
	}
	if err := (Params{Beta: 3, Zt: 1, Dz: -1}).Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}
