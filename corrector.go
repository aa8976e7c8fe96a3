package lsoda

import (
	"math"

	"github.com/soypat/lsoda-go/la"
	"gonum.org/v1/exp/linsolve"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// internalFunc is the vector-field callback in the core's 1-indexed
// calling convention (index 0 unused, components at 1..n). The public,
// 0-indexed Func from the external interface is adapted to this once at
// Solver construction time.
type internalFunc func(t float64, y, dydt []float64)

const (
	maxcor = 3  // maximum corrector iterations per spec.md section 4.3
	mxncf  = 10 // maximum consecutive corrector failures before giving up
)

// corrFlag is the outcome of a full corrector attempt for one step.
type corrFlag int

const (
	corrConverged corrFlag = iota
	corrRetrySmallerH
	corrFatal
)

// corrector carries the per-step scratch the correction loop needs beyond
// what lives permanently on Context: the trial y vector and the user
// callback, neither of which belong on Context since they change identity
// across Solver configurations.
type corrector struct {
	c   *Context
	f   internalFunc
	y   []float64 // trial state, 1-indexed length n+1
	ncf int       // consecutive corrector failures this integration

	lastDel float64 // del at the convergence iteration, for completeStep
	lastM   int     // iteration count at convergence, for completeStep

	pOrig  *mat.Dense // unfactored P, kept for the GMRES refinement pass in run()
	refine bool       // Options.Refine: polish the LU chord solve with GMRES
}

// buildJacobian fills wm = I - h*el1*J, per spec.md section 4.3 ("Chord
// setup"). The Jacobian itself comes from gonum's forward-difference
// fd.Jacobian, the same building block the teacher's NewtonRaphsonSolver
// uses via state.Jacobian; c.savf must already hold f(tn, y) evaluated at
// the predicted y.
func (cc *corrector) buildJacobian() error {
	c := cc.c
	n := c.n

	x := make([]float64, n)
	copy(x, cc.y[1:n+1])
	wrapped := func(dst, x []float64) {
		y1 := make([]float64, n+1)
		d1 := make([]float64, n+1)
		copy(y1[1:], x)
		cc.f(c.tn, y1, d1)
		copy(dst, d1[1:])
	}
	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, wrapped, x, &fd.JacobianSettings{Formula: fd.Forward})
	c.nje++
	c.nfe += n

	rowSum := make([]float64, n+1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := jac.At(i, j)
			c.wm.Rows[i][j] = v
			rowSum[i+1] += absF(v)
		}
	}
	c.pdnorm = la.WeightedNorm(rowSum[1:n+1], c.ewt[1:n+1])

	// P = I - h*el1*J
	el1 := c.el[1]
	scale := -c.h * el1
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c.wm.Rows[i][j] *= scale
		}
		c.wm.Rows[i][i] += 1
	}
	if cc.refine {
		cc.pOrig = mat.NewDense(n, n, flattenRows(c.wm.Rows))
	}

	if err := la.Factor(c.wm, c.ipvt); err != nil {
		return err
	}
	c.ipup = 0
	c.rc = 1
	c.nslp = c.nst
	c.crate = 0.7
	c.jcur = 1
	return nil
}

// flattenRows copies a [][]float64 into row-major backing storage for
// mat.NewDense, since la.Matrix keeps its own per-row slices rather than
// one contiguous buffer.
func flattenRows(rows [][]float64) []float64 {
	n := len(rows)
	out := make([]float64, 0, n*n)
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// run drives up to maxcor corrector iterations (functional or chord,
// chosen by c.miter) to convergence, per spec.md section 4.3. On return,
// cc.y holds the corrected state, c.acor holds the accumulated
// correction, and the returned corrFlag tells the caller whether to
// proceed to the error test, retry with a smaller step, or abandon.
func (cc *corrector) run() corrFlag {
	c := cc.c
	n := c.n
	rhs := make([]float64, n+1)

restart:
	for i := 1; i <= n; i++ {
		cc.y[i] = c.yh[1][i]
		c.acor[i] = 0
	}
	delp := 0.0
	for m := 0; ; m++ {
		cc.f(c.tn, cc.y, c.savf)
		c.nfe++

		var del float64
		if c.miter == iterChord {
			if c.ipup > 0 {
				if err := cc.buildJacobian(); err != nil {
					return cc.corrFailure()
				}
			}
			for i := 1; i <= n; i++ {
				rhs[i] = c.h*c.savf[i] - (c.yh[2][i] + c.acor[i])
			}
			var rhsOrig []float64
			if cc.refine {
				rhsOrig = append([]float64(nil), rhs[1:n+1]...)
			}
			la.Solve(c.wm, c.ipvt, rhs[1:n+1])
			if cc.refine {
				cc.refineWithGMRES(rhsOrig, rhs[1:n+1])
			}
			for i := 1; i <= n; i++ {
				c.acor[i] += rhs[i]
				cc.y[i] = c.yh[1][i] + c.el[1]*c.acor[i]
			}
			del = c.weightedNorm(rhs)
		} else {
			for i := 1; i <= n; i++ {
				sv := c.h*c.savf[i] - c.yh[2][i]
				cc.y[i] = sv - c.acor[i]
				c.savf[i] = sv
			}
			del = c.weightedNorm(cc.y)
			for i := 1; i <= n; i++ {
				cc.y[i] = c.yh[1][i] + c.el[1]*c.savf[i]
				c.acor[i] = c.savf[i]
			}
		}

		pnorm := c.weightedNorm(c.yh[1])
		if del <= 100*pnorm*eta {
			c.jcur = 1
			cc.lastDel, cc.lastM = del, m
			return corrConverged
		}
		if m > 0 {
			rm := math.Min(del/delp, 1024)
			c.crate = math.Max(0.2*c.crate, rm)
		}
		dcon := del * math.Min(1, 1.5*c.crate) / (c.table().tesco[c.nq][2] * c.conit)
		if dcon <= 1 {
			c.jcur = 1
			cc.lastDel, cc.lastM = del, m
			return corrConverged
		}
		if m >= 2 && del > 2*delp {
			if c.miter != 0 && c.jcur == 0 {
				c.ipup = int(c.miter)
				goto restart
			}
			return cc.corrFailure()
		}
		delp = del
		if m+1 >= maxcor {
			if c.miter != 0 && c.jcur == 0 {
				c.ipup = int(c.miter)
				goto restart
			}
			return cc.corrFailure()
		}
	}
}

// refineWithGMRES polishes the dense LU solve with a short iterative pass
// when Options.Refine is set (off by default: spec.md section 4.3 calls
// for a plain LU back-substitution, so this stays opt-in). Same
// gonum.org/v1/exp/linsolve.GMRES call the teacher's
// NewtonRaphsonSolver runs next to its own hand-rolled algebra. Bounded to
// a couple of iterations since it is a refinement, not the primary solve;
// any error leaves the LU answer in delta untouched.
func (cc *corrector) refineWithGMRES(rhsOrig, delta []float64) {
	if cc.pOrig == nil {
		return
	}
	n := len(rhsOrig)
	band := denseToBand(cc.pOrig)
	b := mat.NewVecDense(n, rhsOrig)
	result, err := linsolve.Iterative(band, b, &linsolve.GMRES{}, &linsolve.Settings{MaxIterations: 2})
	if err != nil {
		return
	}
	copy(delta, result.X.RawVector().Data)
}

// denseToBand stores d in banded form with full bandwidth, the trick the
// teacher's algorithms.go uses to hand a dense matrix to linsolve's
// banded-matrix API.
func denseToBand(d *mat.Dense) *mat.BandDense {
	r, c := d.Dims()
	b := mat.NewBandDense(r, c, r-1, c-1, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			b.SetBand(i, j, d.At(i, j))
		}
	}
	return b
}

// corrFailure implements spec.md section 4.3's failure handling: rewind
// tn and undo the predictor, then decide between a retryable smaller step
// and a fatal abandonment.
func (cc *corrector) corrFailure() corrFlag {
	c := cc.c
	cc.ncf++
	c.undoPredict()
	if absF(c.h) <= 1.00001*c.hmin || cc.ncf == mxncf {
		return corrFatal
	}
	c.rmax = 2
	c.applyStepRatio(0.25)
	c.ialth = c.l
	if c.miter != 0 {
		c.ipup = int(c.miter)
	}
	return corrRetrySmallerH
}
