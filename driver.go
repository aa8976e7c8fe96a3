package lsoda

import (
	"fmt"
	"math"
)

// Task is the input half of the classic istate bidirectional flag (design
// note section 9, "separate input-task and output-status types"):
// spec.md section 4.1's five task modes.
type Task int

const (
	TaskToTout       Task = 1 // integrate to tout, interpolating if tn passed it
	TaskOneStep      Task = 2 // take one internal step and return at tn
	TaskPastTout     Task = 3 // integrate past tout, return tn, no interpolation
	TaskToTCrit      Task = 4 // integrate to tout, never stepping past tcrit
	TaskOneStepTCrit Task = 5 // one internal step, clipped to land exactly on tcrit
)

func (t Task) valid() bool { return t >= TaskToTout && t <= TaskOneStepTCrit }

// Solver owns one integration context together with the tolerance and
// option state needed to drive it, per spec.md section 5: one Solver is
// not safe for concurrent Advance calls, and two independent integrations
// need two independent Solvers.
type Solver struct {
	f    internalFunc
	n    int
	itol int
	rtol []float64
	atol []float64
	opt  Options
	ctx  *Context
	log  *Logger

	istate    int
	hnilCount int
	started   bool

	resultLabels []string
}

// NewSolver allocates a Solver for an n-component system. itol selects
// which of rtol/atol is scalar (length 1) vs per-component (length n), per
// the four shape modes of spec.md section 3: 1 scalar/scalar, 2
// scalar/vector, 3 vector/scalar, 4 vector/vector.
func NewSolver(f Func, n, itol int, rtol, atol []float64, opts ...Option) (*Solver, error) {
	if n < 1 {
		return nil, &IllegalInputError{Reason: "neq must be >= 1"}
	}
	if itol < 1 || itol > 4 {
		return nil, &IllegalInputError{Reason: "itol must be in 1..4"}
	}
	opt := DefaultOptions()
	for _, o := range opts {
		o(&opt)
	}
	if opt.JT != 2 {
		return nil, &IllegalInputError{Reason: "unsupported Jacobian mode: only jt=2 (dense finite-difference) is implemented"}
	}
	if opt.MxOrdN < 1 || opt.MxOrdN > maxOrderAdams {
		return nil, &IllegalInputError{Reason: "mxordn out of range"}
	}
	if opt.MxOrdS < 1 || opt.MxOrdS > maxOrderBDF {
		return nil, &IllegalInputError{Reason: "mxords out of range"}
	}
	s := &Solver{
		f:    adaptFunc(f),
		n:    n,
		itol: itol,
		rtol: append([]float64(nil), rtol...),
		atol: append([]float64(nil), atol...),
		opt:  opt,
		ctx:  newContext(n, opt.MxOrdN, opt.MxOrdS),
		istate: 1,
	}
	s.ctx.hmin = opt.HMin
	s.ctx.rmax = 1e4
	return s, nil
}

// SetLogger attaches a diagnostic channel; nil discards diagnostics.
func (s *Solver) SetLogger(l *Logger) { s.log = l }

// Istate returns the classic istate status code from the last Advance
// call, for callers porting reference code that switches on it directly.
func (s *Solver) Istate() int { return s.istate }

func (s *Solver) logf(format string, a ...interface{}) {
	if s.log != nil {
		s.log.Logf(format, a...)
		s.log.flush()
	}
}

func (s *Solver) warnf(format string, a ...interface{}) {
	if s.log != nil {
		s.log.Warnf(format, a...)
		s.log.flush()
	}
}

// labels returns the y0..y(n-1) column names LogResults prints, the
// state carrying no symbol table of its own (design note section 9).
func (s *Solver) labels() []string {
	if s.resultLabels == nil {
		s.resultLabels = make([]string, s.n)
		for i := range s.resultLabels {
			s.resultLabels[i] = fmt.Sprintf("y%d", i)
		}
	}
	return s.resultLabels
}

func (s *Solver) logAcceptedStep() {
	if !s.opt.LogResults || s.log == nil {
		return
	}
	y := make([]float64, s.n)
	fromInternal(y, s.ctx.yh[1])
	s.log.LogResults("t", s.labels(), s.ctx.tn, y)
	s.log.flush()
}

// Advance runs the driver of spec.md section 4.1: it steps the context
// from *t toward tout under the given task semantics, mutating y and *t in
// place and returning nil on success or a StatusError describing the
// failure tier. The returned error also updates Istate().
func (s *Solver) Advance(y []float64, t *float64, tout float64, itask Task) error {
	if s.ctx.illin >= 5 {
		return s.fail(&IllegalInputError{Reason: "context abandoned after 5 consecutive illegal-input returns"})
	}
	if len(y) != s.n {
		return s.fail(&IllegalInputError{Reason: "y length does not match neq"})
	}
	if !itask.valid() {
		return s.fail(&IllegalInputError{Reason: "itask out of range"})
	}
	c := s.ctx

	if !s.started {
		if *t == tout {
			s.istate = 2
			c.illin = 0
			return nil
		}
		if math.Abs(tout-*t) < 100*eta*math.Max(absF(*t), absF(tout)) {
			return s.fail(&IllegalInputError{Reason: "tout too close to t to resolve a step direction"})
		}
		toInternal(c.yh[1], y)
		if err := c.recomputeEwt(s.itol, s.rtol, s.atol); err != nil {
			return s.fail(err)
		}
		c.tn = *t
		c.nq, c.l = 1, 2
		c.meth = methAdams
		c.miter = iterChord
		c.refreshEl()
		c.jstart = 0
		c.icount = switchCheckInterval
		c.ialth = 2
		c.nst, c.nfe, c.nje = 0, 0, 0

		dydt := make([]float64, s.n+1)
		s.f(c.tn, c.yh[1], dydt)
		h0, err := s.initialStep(*t, tout, dydt)
		if err != nil {
			return s.fail(err)
		}
		c.h = h0
		for i := 1; i <= s.n; i++ {
			c.yh[2][i] = h0 * dydt[i]
		}
		s.started = true
		s.istate = 2
	}

	tcrit := s.opt.TCrit
	if itask == TaskToTCrit || itask == TaskOneStepTCrit {
		if (tcrit-tout)*(tout-*t) < 0 {
			return s.fail(&IllegalInputError{Reason: "tcrit behind tout"})
		}
		if (c.tn-tcrit)*c.h > 0 {
			return s.fail(&IllegalInputError{Reason: "tn already past tcrit"})
		}
	}

	cc := &corrector{c: c, f: s.f, y: make([]float64, s.n+1), refine: s.opt.Refine}
	for step := 0; ; step++ {
		if step >= s.opt.MxStep {
			return s.fail(&WorkExceededError{Tn: c.tn, MxStep: s.opt.MxStep, Elapsed: step})
		}

		if c.nst > 0 {
			if err := c.recomputeEwt(s.itol, s.rtol, s.atol); err != nil {
				fromInternal(y, c.yh[1])
				*t = c.tn
				return s.fail(err)
			}
		}

		tolsf := eta * c.weightedNorm(c.yh[1])
		if tolsf > 1 {
			return s.fail(&ToleranceError{Tolsf: tolsf * 2})
		}

		hmax := s.opt.HMax
		if hmax > 0 {
			rh := math.Min(1, hmax/absF(c.h)) // clamp growth so |h| never exceeds hmax
			if rh < 1 {
				c.applyStepRatio(rh)
			}
		}

		if itask == TaskToTCrit || itask == TaskOneStepTCrit {
			if (c.tn+c.h-tcrit)*c.h > 0 {
				c.h = tcrit - c.tn
			}
		}

		if c.tn+c.h == c.tn {
			s.hnilCount++
			if s.hnilCount <= s.opt.MxHnil {
				s.warnf("lsoda: warning: internal step size h=%g is too small relative to t=%g; integration proceeding\n", c.h, c.tn)
			}
		}

		c.predict()
		flag := cc.run()
		switch flag {
		case corrFatal:
			return s.fail(&ConvergenceError{Tn: c.tn, H: c.h})
		case corrRetrySmallerH:
			continue
		}

		outcome := cc.completeStep(cc.lastDel, cc.lastM)
		switch outcome {
		case stepRejectFatal:
			return s.fail(&ErrorTestError{Tn: c.tn, H: c.h})
		case stepRejectRetry:
			continue
		}
		cc.ncf = 0
		s.logAcceptedStep()

		if switched := c.maybeSwitchMethod(); switched && s.opt.Ixpr != 0 {
			s.warnf("lsoda: switched method to %v at t=%g, h=%g, nq=%d\n", c.meth, c.tn, c.h, c.nq)
		}

		done, err := s.checkTaskComplete(y, t, tout, itask, tcrit)
		if err != nil {
			return s.fail(err)
		}
		if done {
			s.istate = IstateSuccess
			c.illin = 0
			return nil
		}
	}
}

// checkTaskComplete applies the task-specific return logic of spec.md
// section 4.1 after an accepted step, writing y/*t when the request is
// satisfied.
func (s *Solver) checkTaskComplete(y []float64, t *float64, tout float64, itask Task, tcrit float64) (bool, error) {
	c := s.ctx
	switch itask {
	case TaskOneStep:
		*t = c.tn
		fromInternal(y, c.yh[1])
		return true, nil
	case TaskOneStepTCrit:
		*t = c.tn
		fromInternal(y, c.yh[1])
		if absF(c.tn-tcrit) <= 100*eta*(absF(c.tn)+absF(c.h)) {
			*t = tcrit
		}
		return true, nil
	case TaskToTout, TaskToTCrit:
		if (c.tn-tout)*c.h < 0 {
			return false, nil
		}
		dky := make([]float64, s.n+1)
		if err := c.interpolate(tout, 0, dky); err != nil {
			return false, err
		}
		*t = tout
		fromInternal(y, dky)
		return true, nil
	case TaskPastTout:
		lowerBound := c.tn - c.hu*(1+100*eta)
		if (c.tn-tout)*c.h < 0 {
			return false, nil
		}
		if (tout-lowerBound)*c.h < 0 {
			return false, &IllegalInputError{Reason: "tout lies behind the interpolable window"}
		}
		*t = c.tn
		fromInternal(y, c.yh[1])
		return true, nil
	}
	return false, nil
}

// initialStep computes h0 per spec.md section 4.1's formula when the user
// has not pinned H0.
func (s *Solver) initialStep(t, tout float64, dydt []float64) (float64, error) {
	if s.opt.H0 != 0 {
		return s.opt.H0, nil
	}
	c := s.ctx
	tol := 0.0
	if s.itol == 1 || s.itol == 2 {
		tol = math.Max(tol, s.rtol[0])
	} else {
		for _, r := range s.rtol {
			tol = math.Max(tol, r)
		}
	}
	if tol <= 0 {
		for i := 1; i <= s.n; i++ {
			at := s.atol[0]
			if s.itol == 2 || s.itol == 4 {
				at = s.atol[i-1]
			}
			if c.yh[1][i] != 0 {
				tol = math.Max(tol, at/absF(c.yh[1][i]))
			}
		}
	}
	tol = math.Max(tol, 100*eta)
	tol = math.Min(tol, 1e-3)

	w0 := math.Max(absF(t), absF(tout))
	sum := c.weightedNorm(dydt)
	sum = 1/(tol*w0*w0) + tol*sum*sum
	if sum <= 0 {
		sum = 1e-10
	}
	h0 := math.Copysign(1, tout-t) * math.Min(1/math.Sqrt(sum), absF(tout-t))
	hmxi := 0.0
	if s.opt.HMax > 0 {
		hmxi = 1 / s.opt.HMax
	}
	h0 /= math.Max(1, absF(h0)*hmxi)
	return h0, nil
}

// fail records the failure on the Solver's istate and returns it.
func (s *Solver) fail(err error) error {
	if se, ok := err.(StatusError); ok {
		s.istate = se.Status()
		if s.istate == IstateIllegalInput {
			s.ctx.illin++
			if s.ctx.illin >= 5 {
				s.logf("lsoda: 5 consecutive illegal-input returns, abandoning context\n")
			}
		}
	} else {
		s.istate = IstateIllegalInput
	}
	return err
}

// toInternal/fromInternal convert between the public 0-indexed state
// vectors and the core's 1-indexed arrays.
func toInternal(dst []float64, y []float64) {
	for i, v := range y {
		dst[i+1] = v
	}
}

func fromInternal(y []float64, src []float64) {
	for i := range y {
		y[i] = src[i+1]
	}
}
