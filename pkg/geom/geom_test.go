package geom

import (
	"math"
	"testing"
)

func TestRect_Extend(t *testing.T) {
	r := EmptyRect()
	if !r.Empty() {
		t.Fatal("expected empty rect")
	}
	if r.Contains(V(0, 0)) {
		t.Error("empty rect must not contain the origin")
	}

	r = r.Extend(V(3, -1)).Extend(V(-2, 4))
	if r.Empty() {
		t.Fatal("expected non-empty rect")
	}
	if r.Width() != 5 || r.Height() != 5 {
		t.Errorf("got %vx%v, want 5x5", r.Width(), r.Height())
	}
	if c := r.Center(); c != V(0.5, 1.5) {
		t.Errorf("center = %v, want (0.5, 1.5)", c)
	}
	if !r.Contains(V(0, 0)) {
		t.Error("rect should contain the origin")
	}
}

func TestVec_Finite(t *testing.T) {
	if !V(1, 2).Finite() {
		t.Error("(1,2) should be finite")
	}
	if V(math.NaN(), 0).Finite() || V(0, math.Inf(1)).Finite() {
		t.Error("NaN/Inf must not be finite")
	}
}

func TestVec_Polar(t *testing.T) {
	p := V(1, 1).Polar(2, math.Pi/2)
	if !p.Near(V(1, 3), 1e-9) {
		t.Errorf("got %v, want (1,3)", p)
	}
}
