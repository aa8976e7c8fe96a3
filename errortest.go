package lsoda

import "math"

// errortest.go implements the local error test and the step & order
// selector, spec.md sections 4.4 and 4.5. Both live together here because
// the selector only ever runs immediately after an accepted error test and
// shares its inputs (dsm, acor, the saved order-up row).

// stepOutcome is what completeStep decided after a converged corrector
// iteration: accept and move on, reject and retry smaller, or abandon.
type stepOutcome int

const (
	stepAccepted stepOutcome = iota
	stepRejectRetry
	stepRejectFatal
)

// completeStep runs the error test (section 4.4) and, on acceptance, the
// step & order selector (section 4.5) and Nordsieck update. del and m are
// the corrector's convergence values: the last increment norm and the
// iteration count at which it converged.
func (cc *corrector) completeStep(del float64, m int) stepOutcome {
	c := cc.c
	tesco := c.table().tesco
	dsm := del
	if m != 0 {
		dsm = c.weightedNorm(c.acor)
	}
	dsm /= tesco[c.nq][2]

	if dsm > 1 {
		return cc.rejectStep()
	}

	c.kflag = 0
	c.nst++
	c.hu = c.h
	c.nqu = c.nq
	c.mused = c.meth
	for j := 1; j <= c.l; j++ {
		el := c.el[j]
		row := c.yh[j]
		acor := c.acor
		for i := 1; i <= c.n; i++ {
			row[i] += el * acor[i]
		}
	}
	c.selectStepAndOrder(dsm)
	return stepAccepted
}

// rejectStep implements the reject branch of section 4.4: undo the
// predictor, count the failure, and after enough consecutive failures
// force a cold restart at order 1 or abandon entirely.
func (cc *corrector) rejectStep() stepOutcome {
	c := cc.c
	c.undoPredict()
	c.rmax = 2
	c.kflag--
	if c.kflag <= -10 {
		return stepRejectFatal
	}
	if c.kflag <= -3 {
		// Three or more consecutive failures: distrust the history,
		// recompute f at the rolled-back state and fall back to order 1.
		cc.f(c.tn, c.yh[1], c.savf)
		c.nfe++
		if c.nq > 1 {
			c.nq = 1
			c.l = 2
			c.refreshEl()
		}
		if absF(c.h) > c.hmin {
			rh := 0.1
			if c.kflag <= -6 {
				rh = 0.01
			}
			c.applyStepRatio(math.Max(rh, c.hmin/absF(c.h)))
		}
		c.ipup = int(c.miter)
		c.ialth = 5
	}
	return stepRejectRetry
}

// selectStepAndOrder computes candidate growth factors at orders nq-1, nq
// and nq+1, picks the largest (ties favour the current order), applies it,
// and performs the post-step ialth bookkeeping of section 4.5's last
// paragraph.
func (c *Context) selectStepAndOrder(dsm float64) {
	tesco := c.table().tesco
	rhup := 0.0
	if c.l != c.lmax && c.hasSavedOrderUp {
		dup := 0.0
		for i := 1; i <= c.n; i++ {
			dup += ((c.acor[i] - c.yh[c.lmax][i]) * c.ewt[i]) * ((c.acor[i] - c.yh[c.lmax][i]) * c.ewt[i])
		}
		dup = math.Sqrt(dup/float64(c.n)) / tesco[c.nq][3]
		rhup = 1 / (1.4*math.Pow(dup, 1/float64(c.l+1)) + 1.4e-6)
	}
	rhsm := 1 / (1.2*math.Pow(dsm, 1/float64(c.l)) + 1.2e-6)
	rhdn := 0.0
	if c.nq > 1 {
		ddn := c.weightedNorm(c.yh[c.l]) / tesco[c.nq][1]
		rhdn = 1 / (1.3*math.Pow(ddn, 1/float64(c.nq)) + 1.3e-6)
	}

	if c.meth == methAdams {
		pdh := math.Max(absF(c.h)*c.pdlast, 1e-6)
		if rhsm != 0 {
			rhsm = math.Min(rhsm, c.adams.sm1[c.nq]/pdh)
		}
		if rhup != 0 {
			rhup = math.Min(rhup, c.adams.sm1[c.nq+1]/pdh)
		}
		if rhdn != 0 {
			rhdn = math.Min(rhdn, c.adams.sm1[c.nq-1]/pdh)
		}
	}

	newnq := c.nq
	rh := rhsm
	if rhup > rh {
		rh = rhup
		newnq = c.nq + 1
	}
	if rhdn > rh {
		rh = rhdn
		newnq = c.nq - 1
	}

	if c.kflag == 0 && rh < 1.1 {
		c.ialth--
		if c.ialth == 1 {
			for i := 1; i <= c.n; i++ {
				c.yh[c.lmax][i] = c.acor[i]
			}
			c.hasSavedOrderUp = true
		}
		return
	}
	if c.kflag < 0 {
		rh = math.Min(rh, 1)
		if c.kflag <= -2 {
			rh = math.Min(rh, 0.2)
		}
	}
	if newnq != c.nq {
		if newnq > c.nq {
			for i := 1; i <= c.n; i++ {
				c.yh[newnq+1][i] = c.acor[i] * c.el[c.l] / float64(c.l)
			}
		}
		c.nq = newnq
		c.l = newnq + 1
		c.refreshEl()
	}
	c.applyStepRatio(rh)
	c.ialth = c.l
}

// applyStepRatio rescales the Nordsieck rows by rh^(j-1) and updates h,
// per section 4.5 ("When h changes, rescale yh...").
func (c *Context) applyStepRatio(rh float64) {
	rh = math.Min(rh, c.rmax)
	factor := 1.0
	for j := 2; j <= c.l; j++ {
		factor *= rh
		row := c.yh[j]
		for i := 1; i <= c.n; i++ {
			row[i] *= factor
		}
	}
	c.h *= rh
	c.rc *= rh
}
