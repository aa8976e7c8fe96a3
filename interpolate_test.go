package lsoda

import (
	"math"
	"testing"
)

func TestInterpolateReturnsCurrentStateAtTn(t *testing.T) {
	c := newTestContext(2)
	c.tn = 1.0
	c.h = 0.1
	c.hu = 0.1
	c.nq, c.l = 2, 3
	c.yh[1][1], c.yh[1][2] = 3, 4
	dky := make([]float64, 3)
	if err := c.interpolate(1.0, 0, dky); err != nil {
		t.Fatalf("interpolate: %v", err)
	}
	if math.Abs(dky[1]-3) > 1e-12 || math.Abs(dky[2]-4) > 1e-12 {
		t.Errorf("dky = %v, want (3,4)", dky[1:])
	}
}

func TestInterpolateRejectsOutOfRangeTime(t *testing.T) {
	c := newTestContext(1)
	c.tn = 1.0
	c.h = 0.1
	c.hu = 0.1
	c.nq, c.l = 1, 2
	dky := make([]float64, 2)
	if err := c.interpolate(-5, 0, dky); err == nil {
		t.Fatal("expected error for time far outside window")
	}
}

func TestInterpolateRejectsOrderTooHigh(t *testing.T) {
	c := newTestContext(1)
	c.tn = 1.0
	c.h = 0.1
	c.hu = 0.1
	c.nq = 2
	dky := make([]float64, 2)
	if err := c.interpolate(1.0, 5, dky); err == nil {
		t.Fatal("expected error for k > nq")
	}
}
