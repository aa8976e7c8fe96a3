package lsoda

// predict applies the scaled Pascal-matrix update to yh in place,
// realising the predictor step of spec.md section 4.2: tn is advanced by
// h, and every row below the top is folded into the rows above it so that
// yh[1] becomes the predicted y(tn) and the higher rows become the
// predicted scaled derivatives.
func (c *Context) predict() {
	c.tn += c.h
	for j := c.nq; j >= 1; j-- {
		for i1 := j; i1 <= c.nq; i1++ {
			row, next := c.yh[i1], c.yh[i1+1]
			for i := 1; i <= c.n; i++ {
				row[i] += next[i]
			}
		}
	}
}

// undoPredict reverses predict exactly, restoring yh and tn to their
// pre-step values. Used on corrector failure and on error-test rejection;
// spec.md section 5 requires this to be a bit-for-bit mirror image of
// predict.
func (c *Context) undoPredict() {
	for j := c.nq; j >= 1; j-- {
		for i1 := j; i1 <= c.nq; i1++ {
			row, next := c.yh[i1], c.yh[i1+1]
			for i := 1; i <= c.n; i++ {
				row[i] -= next[i]
			}
		}
	}
	c.tn -= c.h
}
