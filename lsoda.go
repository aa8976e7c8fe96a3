// Package lsoda implements the core of LSODA: an ordinary differential
// equation integrator that predicts with a Nordsieck history array,
// corrects with a modified-Newton chord iteration on a finite-difference
// Jacobian, and automatically switches between the Adams-Moulton and BDF
// formulas as the problem's stiffness changes. The driver uses the chord
// iteration for both formulas; the functional-iteration corrector is
// implemented but the driver never selects it.
package lsoda

import "fmt"

// Func is the public, 0-indexed vector-field callback: dydt = f(t, y).
// The core re-bases y/dydt to its internal 1-indexed convention before
// ever calling user code.
type Func func(t float64, y, dydt []float64)

// adaptFunc wraps a public Func as the core's internalFunc, trimming the
// unused index-0 slot off both vectors before delegating.
func adaptFunc(f Func) internalFunc {
	return func(t float64, y, dydt []float64) {
		f(t, y[1:], dydt[1:])
	}
}

// Table is the result of Solve: column 0 holds the requested times,
// columns 1..n hold the corresponding state components.
type Table struct {
	Time  []float64
	Y     [][]float64 // Y[k] is the state at Time[k], length n
}

// Run is a stateful convenience wrapper over Solver: it keeps the current
// (t, y) pair so a caller that wants to step interactively doesn't have to
// carry them itself. Built the way the teacher's Simulation wraps its
// Solver/State pair in simulation.go, minus the RK-family selector and
// event hooks that have no place in LSODA's single fixed algorithm.
type Run struct {
	solver *Solver
	y      []float64
	t      float64
}

// NewRun constructs a Run starting at (t0, y0).
func NewRun(f Func, y0 []float64, t0 float64, itol int, rtol, atol []float64, opts ...Option) (*Run, error) {
	solver, err := NewSolver(f, len(y0), itol, rtol, atol, opts...)
	if err != nil {
		return nil, err
	}
	return &Run{
		solver: solver,
		y:      append([]float64(nil), y0...),
		t:      t0,
	}, nil
}

// Advance integrates up to tout (itask=1) and returns the state there. The
// returned slice is owned by the Run; copy it before the next call if the
// caller needs to keep it.
func (r *Run) Advance(tout float64) ([]float64, error) {
	if err := r.solver.Advance(r.y, &r.t, tout, TaskToTout); err != nil {
		return nil, fmt.Errorf("lsoda: advance to t=%g: %w", tout, err)
	}
	return r.y, nil
}

// T returns the Run's current integration time.
func (r *Run) T() float64 { return r.t }

// Istate returns the underlying Solver's istate, for callers that want to
// inspect it directly rather than only check Advance/Integrate's error.
func (r *Run) Istate() int { return r.solver.Istate() }

// Integrate advances through every point of times in order (times[0] must
// equal the Run's current t) and returns the full trajectory, the
// stateful counterpart to the package-level Solve helper.
func (r *Run) Integrate(times []float64) (*Table, error) {
	if len(times) == 0 {
		return &Table{}, nil
	}
	if times[0] != r.t {
		return nil, &IllegalInputError{Reason: "Integrate: times[0] must equal the Run's current t"}
	}
	table := &Table{
		Time: append([]float64(nil), times...),
		Y:    make([][]float64, len(times)),
	}
	table.Y[0] = append([]float64(nil), r.y...)
	for k := 1; k < len(times); k++ {
		if _, err := r.Advance(times[k]); err != nil {
			return table, err
		}
		table.Y[k] = append([]float64(nil), r.y...)
	}
	return table, nil
}

// Solve is the high-level convenience wrapper of spec.md section 6: it
// integrates y0 across the given time grid with itask=1, resetting istate
// to 1 once and letting it transition to 2 for every subsequent point.
func Solve(f Func, y0 []float64, times []float64, itol int, rtol, atol []float64, opts ...Option) (*Table, error) {
	if len(times) == 0 {
		return &Table{}, nil
	}
	n := len(y0)
	solver, err := NewSolver(f, n, itol, rtol, atol, opts...)
	if err != nil {
		return nil, err
	}
	y := append([]float64(nil), y0...)
	t := times[0]
	table := &Table{
		Time: append([]float64(nil), times...),
		Y:    make([][]float64, len(times)),
	}
	table.Y[0] = append([]float64(nil), y...)
	for k := 1; k < len(times); k++ {
		if err := solver.Advance(y, &t, times[k], TaskToTout); err != nil {
			return table, fmt.Errorf("lsoda: solve failed at t=%g: %w", times[k], err)
		}
		table.Y[k] = append([]float64(nil), y...)
	}
	return table, nil
}
