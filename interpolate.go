package lsoda

import "math"

// interpolate.go evaluates the Nordsieck history as a dense-output
// polynomial, spec.md section 4.7 (the classic "intdy" routine).

// interpolate computes the k-th derivative of the solution at time t using
// the current Nordsieck array, writing the result (1-indexed, length n+1)
// into dky. It returns an error if t falls outside the interpolable window
// [tn - hu - 100*ETA*(|tn|+|hu|), tn + 100*ETA*|tn|] or k is out of [0,nq].
func (c *Context) interpolate(t float64, k int, dky []float64) error {
	if k < 0 || k > c.nq {
		return &IllegalInputError{Reason: "interpolation order out of range"}
	}
	tp := c.tn - c.hu - 100*eta*(absF(c.tn)+absF(c.hu))
	tcrit := c.tn + 100*eta*absF(c.tn)
	if (t-tp)*(t-tcrit) > 0 {
		return &IllegalInputError{Reason: "interpolation time out of range"}
	}

	s := (t - c.tn) / c.h
	ic := 1.0
	for jj := c.l - k; jj <= c.nq; jj++ {
		ic *= float64(jj)
	}
	c0 := ic
	for i := 1; i <= c.n; i++ {
		dky[i] = c0 * c.yh[c.l][i]
	}
	for j := c.nq - 1; j >= k; j-- {
		jp1 := j + 1
		ic = 1.0
		for jj := jp1 - k; jj <= j; jj++ {
			ic *= float64(jj)
		}
		cj := ic
		for i := 1; i <= c.n; i++ {
			dky[i] = cj*c.yh[jp1][i] + s*dky[i]
		}
	}
	if k == 0 {
		return nil
	}
	r := math.Pow(absF(c.h), float64(-k))
	for i := 1; i <= c.n; i++ {
		dky[i] *= r
	}
	return nil
}
