package la

import (
	"math"
	"testing"
)

func TestFactorSolveIdentity(t *testing.T) {
	m := NewMatrix(3)
	m.SetIdentity()
	ipvt := make([]int, 3)
	if err := Factor(m, ipvt); err != nil {
		t.Fatalf("unexpected singular: %v", err)
	}
	b := []float64{1, 2, 3}
	Solve(m, ipvt, b)
	want := []float64{1, 2, 3}
	for i := range want {
		if math.Abs(b[i]-want[i]) > 1e-12 {
			t.Errorf("b[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestFactorSolveKnown(t *testing.T) {
	// System: [2 1; 1 3] x = [5 10] -> x = [1, 3]
	m := NewMatrix(2)
	m.Rows[0][0], m.Rows[0][1] = 2, 1
	m.Rows[1][0], m.Rows[1][1] = 1, 3
	ipvt := make([]int, 2)
	if err := Factor(m, ipvt); err != nil {
		t.Fatalf("unexpected singular: %v", err)
	}
	b := []float64{5, 10}
	Solve(m, ipvt, b)
	want := []float64{1, 3}
	for i := range want {
		if math.Abs(b[i]-want[i]) > 1e-9 {
			t.Errorf("x[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestFactorRequiresPivot(t *testing.T) {
	// zero leading pivot forces a row swap
	m := NewMatrix(2)
	m.Rows[0][0], m.Rows[0][1] = 0, 1
	m.Rows[1][0], m.Rows[1][1] = 1, 1
	ipvt := make([]int, 2)
	if err := Factor(m, ipvt); err != nil {
		t.Fatalf("unexpected singular: %v", err)
	}
	b := []float64{1, 3}
	Solve(m, ipvt, b)
	// original system: 0*x0 + 1*x1 = 1; 1*x0 + 1*x1 = 3 -> x1=1, x0=2
	if math.Abs(b[0]-2) > 1e-12 || math.Abs(b[1]-1) > 1e-12 {
		t.Errorf("got %v, want [2 1]", b)
	}
}

func TestFactorSingular(t *testing.T) {
	m := NewMatrix(2)
	m.Rows[0][0], m.Rows[0][1] = 1, 1
	m.Rows[1][0], m.Rows[1][1] = 1, 1
	ipvt := make([]int, 2)
	if err := Factor(m, ipvt); err == nil {
		t.Error("expected singular matrix error")
	}
}

func TestWeightedNorm(t *testing.T) {
	v := []float64{3, 4}
	w := []float64{1, 1}
	got := WeightedNorm(v, w)
	want := math.Sqrt((9 + 16) / 2.0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("WeightedNorm = %v, want %v", got, want)
	}
}

func TestIamax(t *testing.T) {
	x := []float64{1, -5, 3, 4}
	if got := Iamax(x); got != 1 {
		t.Errorf("Iamax = %d, want 1", got)
	}
}
