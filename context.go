package lsoda

import "github.com/soypat/lsoda-go/la"

// method identifies which multistep family the context is currently
// advancing with.
type method int

const (
	methAdams method = 1
	methBDF   method = 2
)

func (m method) String() string {
	if m == methBDF {
		return "bdf"
	}
	return "adams"
}

// iterKind identifies the corrector variant in force for the current
// method/jt combination.
type iterKind int

const (
	iterFunctional iterKind = 0
	iterChord      iterKind = 2
)

// Context owns every array and scalar the integrator mutates between
// steps: the Nordsieck history, the iteration workspace, and the
// adaptation scalars from spec.md section 3. It is allocated once per
// Solver on istate=1 and reused for the Solver's lifetime, matching
// spec.md section 5 ("allocation occurs once... deallocation tied to
// context destruction").
type Context struct {
	n int // number of ODE components

	// Nordsieck history: yh[j][i], j=1..lmax+1, i=1..n. Row 0 and column 0
	// are unused filler so the 1-based spec arithmetic reads unmodified.
	yh   [][]float64
	lmax int

	ewt  []float64
	savf []float64
	acor []float64

	wm   *la.Matrix
	ipvt []int

	// step/order/method state
	tn, h, hu, hold float64
	nq, l           int
	meth            method
	miter           iterKind
	mused           method
	jcur            int // 1 if Jacobian is current
	ipup            int // miter value requested for next Jacobian refresh, 0 = none
	jstart          int // 0 = cold start, 1 = warm, -1 = forced recompute of coeffs

	nst, nfe, nje, nqu, nslp int
	illin                    int // per-context consecutive-illegal-input strikes (open question 2)

	rc, crate float64
	rmax      float64
	ialth     int
	kflag     int
	icount    int // countdown to next method-switch check
	hmin      float64 // active minimum step size, copied from Options.HMin by NewSolver

	pdnorm, pdlast float64

	adams *coeffTable
	bdf   *coeffTable
	el    [14]float64 // compact el[1..l] refreshed after each order change
	conit float64

	cm1, cm2 []float64 // switching-test caches, indexed by order

	// saved row for trial order increase (§4.5 post-step bookkeeping)
	hasSavedOrderUp bool
}

// newContext allocates a Context for n ODE components and the given
// maximum orders for each method (mxordn for Adams, mxords for BDF).
func newContext(n, mxordn, mxords int) *Context {
	lmax := mxordn + 1
	if mxords+1 > lmax {
		lmax = mxords + 1
	}
	c := &Context{
		n:    n,
		lmax: lmax,
		ewt:  make([]float64, n+1),
		savf: make([]float64, n+1),
		acor: make([]float64, n+1),
		wm:   la.NewMatrix(n),
		ipvt: make([]int, n),
		rmax: 1e4,
	}
	c.yh = make([][]float64, lmax+2)
	for j := range c.yh {
		c.yh[j] = make([]float64, n+1)
	}
	c.adams = buildAdamsCoeffs()
	c.bdf = buildBDFCoeffs()
	c.cm1 = make([]float64, maxOrderAdams+1)
	c.cm2 = make([]float64, maxOrderAdams+1)
	for nq := 1; nq <= maxOrderBDF; nq++ {
		c.cm2[nq] = c.bdf.tesco[nq][2] * c.bdf.elco[nq][nq+1]
	}
	for nq := 1; nq <= maxOrderAdams; nq++ {
		c.cm1[nq] = c.adams.tesco[nq][2] * c.adams.elco[nq][nq+1]
	}
	return c
}

// table returns the active method's coefficient table.
func (c *Context) table() *coeffTable {
	if c.meth == methBDF {
		return c.bdf
	}
	return c.adams
}

// refreshEl recomputes the compact el[1..l] array and conit from the
// active coefficient table at the current order, per spec.md section 4.8
// ("after each order change, refresh the compact el[1..l]... and set
// conit = 0.5/(nq+2)").
func (c *Context) refreshEl() {
	elco := c.table().elco[c.nq]
	for i := 1; i <= c.l; i++ {
		c.el[i] = elco[i]
	}
	c.conit = 0.5 / float64(c.nq+2)
}

// recomputeEwt rebuilds the error-weight reciprocals from yh[1] (the
// current y) under one of the four (rtol,atol) shape modes. itol encodes
// which of rtol/atol is scalar (len 1) vs per-component.
func (c *Context) recomputeEwt(itol int, rtol, atol []float64) error {
	for i := 1; i <= c.n; i++ {
		rt := rtol[0]
		if itol == 3 || itol == 4 {
			rt = rtol[i-1]
		}
		at := atol[0]
		if itol == 2 || itol == 4 {
			at = atol[i-1]
		}
		scale := rt*absF(c.yh[1][i]) + at
		if scale <= 0 {
			return &FatalError{Reason: "non-positive error weight", status: IstateNonPositiveEwt}
		}
		c.ewt[i] = 1 / scale
	}
	return nil
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// weightedNorm computes the weighted RMS norm of v (length n, 1-indexed)
// against the context's current ewt.
func (c *Context) weightedNorm(v []float64) float64 {
	return la.WeightedNorm(v[1:c.n+1], c.ewt[1:c.n+1])
}
