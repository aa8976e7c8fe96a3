package lsoda

import "math"

// switcher.go implements the method switcher of spec.md section 4.6:
// every 20 accepted steps, compare the step size the other method would
// support and switch if it wins by a wide enough margin to be worth the
// coefficient reset.

const switchCheckInterval = 20
const switchRatio = 5

// maybeSwitchMethod is called after every accepted step; it decrements
// icount and runs the switch test only once icount reaches zero. It
// returns true if it switched meth, in which case the caller must
// treat the step as a forced order/coefficient reset (section 4.6, "On
// switch").
func (c *Context) maybeSwitchMethod() bool {
	c.icount--
	if c.icount > 0 {
		return false
	}

	switch c.meth {
	case methAdams:
		if c.nq > 5 {
			c.icount = switchCheckInterval
			return false
		}
		nqm2 := c.nq
		if nqm2 > maxOrderBDF {
			nqm2 = maxOrderBDF
		}
		rh2 := 1 / (1.2*math.Pow(c.weightedNorm(c.acor)/c.cm2[c.nq], 1/float64(c.l)) + 1.2e-6)
		pdh := math.Max(absF(c.h)*c.pdlast, 1e-6)
		rh1 := 1 / (1.2*math.Pow(c.weightedNorm(c.acor)/c.cm1[c.nq], 1/float64(c.l)) + 1.2e-6)
		rh1 = math.Min(rh1, c.adams.sm1[c.nq]/pdh)
		if rh2 < switchRatio*rh1 {
			c.icount = switchCheckInterval
			return false
		}
		c.switchTo(methBDF, nqm2)
		return true

	case methBDF:
		nqm1 := c.nq
		if nqm1 > maxOrderAdams {
			nqm1 = maxOrderAdams
		}
		rh1 := 1 / (1.2*math.Pow(c.weightedNorm(c.acor)/c.cm1[c.nq], 1/float64(c.l)) + 1.2e-6)
		rh2 := 1 / (1.2*math.Pow(c.weightedNorm(c.acor)/c.cm2[c.nq], 1/float64(c.l)) + 1.2e-6)
		alpha := c.cm2[c.nq] / c.cm1[c.nq]
		dm1 := c.weightedNorm(c.acor) / c.cm1[c.nq]
		pnorm := c.weightedNorm(c.yh[1])
		if switchRatio*rh2 > rh1*alpha || dm1*math.Pow(alpha, float64(c.nq)) <= 1000*eta*pnorm {
			c.icount = switchCheckInterval
			return false
		}
		c.switchTo(methAdams, nqm1)
		return true
	}
	return false
}

// switchTo performs the method change: new method, reset order, reloaded
// coefficients, and the bookkeeping spec.md section 4.6 requires on switch.
func (c *Context) switchTo(m method, newnq int) {
	c.meth = m
	c.nq = newnq
	c.l = newnq + 1
	c.refreshEl()
	c.pdlast = 0
	c.icount = switchCheckInterval
	c.ialth = c.l
	c.rmax = 10
}
