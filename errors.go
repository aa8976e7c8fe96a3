package lsoda

import "fmt"

// Istate return codes, mirroring the Fortran LSODA convention so callers
// porting reference code can keep their switch statements. 2 is the only
// success code; every negative value is a failure tier.
const (
	IstateSuccess           = 2
	IstateExcessiveWork     = -1
	IstateExcessiveAccuracy = -2
	IstateIllegalInput      = -3
	IstateErrorTestFailed   = -4
	IstateConvergenceFailed = -5
	IstateNonPositiveEwt    = -6
)

// StatusError is satisfied by every error the integrator returns from
// Solver.Advance, letting a caller recover the classic istate code with
// errors.As without inspecting the concrete type.
type StatusError interface {
	error
	Status() int
}

// IllegalInputError reports invalid input: bad neq, bad itask, bad jt,
// tout too close to t, an output time outside the interpolable window, and
// so on. The core never touches y when returning this error.
type IllegalInputError struct {
	Reason string
}

func (e *IllegalInputError) Error() string { return "lsoda: illegal input: " + e.Reason }
func (e *IllegalInputError) Status() int   { return IstateIllegalInput }

// ConvergenceError reports repeated corrector non-convergence that
// exhausted the retry budget (ncf == mxncf, or |h| already at hmin).
type ConvergenceError struct {
	Tn float64
	H  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("lsoda: repeated convergence failures at t=%g h=%g", e.Tn, e.H)
}
func (e *ConvergenceError) Status() int { return IstateConvergenceFailed }

// ErrorTestError reports repeated local-error-test failures that exhausted
// the retry budget (10 consecutive rejections of one step, kflag <= -10).
type ErrorTestError struct {
	Tn float64
	H  float64
}

func (e *ErrorTestError) Error() string {
	return fmt.Sprintf("lsoda: repeated error test failures at t=%g h=%g", e.Tn, e.H)
}
func (e *ErrorTestError) Status() int { return IstateErrorTestFailed }

// WorkExceededError reports that mxstep internal steps were taken without
// reaching tout.
type WorkExceededError struct {
	Tn      float64
	MxStep  int
	Elapsed int
}

func (e *WorkExceededError) Error() string {
	return fmt.Sprintf("lsoda: %d steps taken without reaching tout (mxstep=%d), tn=%g", e.Elapsed, e.MxStep, e.Tn)
}
func (e *WorkExceededError) Status() int { return IstateExcessiveWork }

// ToleranceError reports that the requested tolerance cannot be met given
// the machine precision available (tolsf > 1).
type ToleranceError struct {
	Tolsf float64
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("lsoda: requested tolerance too tight, scale up rtol/atol by >= %g", e.Tolsf)
}
func (e *ToleranceError) Status() int { return IstateExcessiveAccuracy }

// FatalError reports an unrecoverable numerical fault such as a
// non-positive error weight. The core copies the last-known-good y back to
// the caller before returning this error.
type FatalError struct {
	Reason string
	status int
}

func (e *FatalError) Error() string { return "lsoda: fatal: " + e.Reason }
func (e *FatalError) Status() int {
	if e.status != 0 {
		return e.status
	}
	return IstateNonPositiveEwt
}

// newFatalSingular builds a FatalError describing a singular chord
// iteration matrix at step size h.
func newFatalSingular(tn, h float64) *FatalError {
	return &FatalError{Reason: fmt.Sprintf("singular iteration matrix at t=%g h=%g, cannot shrink further", tn, h), status: IstateConvergenceFailed}
}
