package lsoda_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/soypat/lsoda-go"
)

// Scenario 1: exponential decay, spec.md section 8.
func TestExponentialDecay(t *testing.T) {
	f := func(t float64, y, dydt []float64) { dydt[0] = -y[0] }
	solver, err := lsoda.NewSolver(f, 1, 1, []float64{1e-8}, []float64{1e-8})
	if err != nil {
		t.Fatal(err)
	}
	y := []float64{1}
	tt := 0.0
	if err := solver.Advance(y, &tt, 1.0, lsoda.TaskToTout); err != nil {
		t.Fatalf("advance: %v", err)
	}
	want := math.Exp(-1)
	if math.Abs(y[0]-want) > 1e-6 {
		t.Errorf("y(1) = %.11f, want %.11f", y[0], want)
	}
	if solver.Istate() != lsoda.IstateSuccess {
		t.Errorf("istate = %d, want %d", solver.Istate(), lsoda.IstateSuccess)
	}
}

// Scenario 2: the stiff Robertson problem, spec.md section 8.
func TestRobertsonStiff(t *testing.T) {
	f := func(t float64, y, dydt []float64) {
		dydt[0] = -0.04*y[0] + 1e4*y[1]*y[2]
		dydt[2] = 3e7 * y[1] * y[1]
		dydt[1] = -dydt[0] - dydt[2]
	}
	solver, err := lsoda.NewSolver(f, 3, 2, []float64{1e-4}, []float64{1e-8, 1e-14, 1e-6})
	if err != nil {
		t.Fatal(err)
	}
	y := []float64{1, 0, 0}
	tt := 0.0
	if err := solver.Advance(y, &tt, 40, lsoda.TaskToTout); err != nil {
		t.Fatalf("advance: %v", err)
	}
	want := []float64{0.7158, 9.186e-6, 0.2842}
	tol := []float64{5e-4, 5e-4, 5e-4}
	for i := range want {
		if math.Abs(y[i]-want[i]) > tol[i] {
			t.Errorf("y[%d] = %g, want %g +- %g", i, y[i], want[i], tol[i])
		}
	}
}

// Scenario 3: Van der Pol mu=1000, spec.md section 8. Exercised at a
// smaller tout than the full t=3000 scenario so the test suite stays fast.
func TestVanDerPolStiffSwitch(t *testing.T) {
	const mu = 1000.0
	f := func(t float64, y, dydt []float64) {
		dydt[0] = y[1]
		dydt[1] = mu * ((1-y[0]*y[0])*y[1] - y[0])
	}
	solver, err := lsoda.NewSolver(f, 2, 1, []float64{1e-6}, []float64{1e-6},
		lsoda.WithMaxStep(20000))
	if err != nil {
		t.Fatal(err)
	}
	y := []float64{2, 0}
	tt := 0.0
	if err := solver.Advance(y, &tt, 50, lsoda.TaskToTout); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if solver.Istate() != lsoda.IstateSuccess {
		t.Errorf("istate = %d, want success", solver.Istate())
	}
}

// Scenario 4: harmonic oscillator round-trip, spec.md section 8.
func TestHarmonicOscillatorRoundTrip(t *testing.T) {
	f := func(t float64, y, dydt []float64) {
		dydt[0] = y[1]
		dydt[1] = -y[0]
	}
	solver, err := lsoda.NewSolver(f, 2, 1, []float64{1e-10}, []float64{1e-12})
	if err != nil {
		t.Fatal(err)
	}
	y := []float64{1, 0}
	tt := 0.0
	if err := solver.Advance(y, &tt, 2*math.Pi, lsoda.TaskToTout); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if math.Abs(y[0]-1) > 1e-6 || math.Abs(y[1]) > 1e-6 {
		t.Errorf("y(2pi) = %v, want (1,0)", y)
	}
}

// Run is the stateful counterpart of Solve: Integrate should match it
// point for point on the same problem.
func TestRunIntegrateMatchesSolve(t *testing.T) {
	f := func(t float64, y, dydt []float64) { dydt[0] = -y[0] }
	times := []float64{0, 0.5, 1}

	table, err := lsoda.Solve(f, []float64{1}, times, 1, []float64{1e-8}, []float64{1e-8})
	if err != nil {
		t.Fatal(err)
	}

	run, err := lsoda.NewRun(f, []float64{1}, 0, 1, []float64{1e-8}, []float64{1e-8})
	if err != nil {
		t.Fatal(err)
	}
	runTable, err := run.Integrate(times)
	if err != nil {
		t.Fatal(err)
	}
	for k := range times {
		if math.Abs(table.Y[k][0]-runTable.Y[k][0]) > 1e-10 {
			t.Errorf("Y[%d] = %v, want %v", k, runTable.Y[k][0], table.Y[k][0])
		}
	}
	if run.T() != times[len(times)-1] {
		t.Errorf("run.T() = %v, want %v", run.T(), times[len(times)-1])
	}
}

// LogResults should produce a header row and one row per accepted step.
func TestSolverLogResultsWritesCSV(t *testing.T) {
	f := func(t float64, y, dydt []float64) { dydt[0] = -y[0] }
	var buf strings.Builder
	solver, err := lsoda.NewSolver(f, 1, 1, []float64{1e-6}, []float64{1e-6},
		lsoda.WithLogResults())
	if err != nil {
		t.Fatal(err)
	}
	solver.SetLogger(lsoda.NewLogger(&buf))
	y := []float64{1}
	tt := 0.0
	if err := solver.Advance(y, &tt, 1.0, lsoda.TaskToTout); err != nil {
		t.Fatalf("advance: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "y0") {
		t.Errorf("log output missing y0 header: %q", out)
	}
	if strings.Count(out, "\n") < 2 {
		t.Errorf("expected a header row plus at least one data row, got: %q", out)
	}
}

// Refine defaults off: Advance must still converge correctly without it
// on a stiff problem that forces the chord iteration.
func TestRefineOffByDefaultStillConverges(t *testing.T) {
	f := func(t float64, y, dydt []float64) { dydt[0] = -1000 * y[0] }
	solver, err := lsoda.NewSolver(f, 1, 1, []float64{1e-8}, []float64{1e-8})
	if err != nil {
		t.Fatal(err)
	}
	y := []float64{1}
	tt := 0.0
	if err := solver.Advance(y, &tt, 1.0, lsoda.TaskToTout); err != nil {
		t.Fatalf("advance: %v", err)
	}
	want := math.Exp(-1000)
	if math.Abs(y[0]-want) > 1e-6 {
		t.Errorf("y(1) = %g, want ~%g", y[0], want)
	}
}

// Scenario 5: itask=5 with tcrit, spec.md section 8.
func TestTaskOneStepTCrit(t *testing.T) {
	f := func(t float64, y, dydt []float64) { dydt[0] = -y[0] }
	solver, err := lsoda.NewSolver(f, 1, 1, []float64{1e-8}, []float64{1e-8},
		lsoda.WithTCrit(1))
	if err != nil {
		t.Fatal(err)
	}
	y := []float64{1}
	tt := 0.0
	for i := 0; i < 10000; i++ {
		if err := solver.Advance(y, &tt, 1e9, lsoda.TaskOneStepTCrit); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if tt >= 1 {
			break
		}
	}
	if math.Abs(tt-1) > 100*math.Pow(2, -53) {
		t.Errorf("final t = %.15g, want 1 within 100*eta", tt)
	}
}

// Scenario 6: istate=1 with neq=0, spec.md section 8.
func TestNeqZeroRejected(t *testing.T) {
	f := func(t float64, y, dydt []float64) {}
	_, err := lsoda.NewSolver(f, 0, 1, []float64{1e-6}, []float64{1e-6})
	if err == nil {
		t.Fatal("expected error for neq=0")
	}
	se, ok := err.(lsoda.StatusError)
	if !ok {
		t.Fatalf("error %v does not implement StatusError", err)
	}
	if se.Status() != lsoda.IstateIllegalInput {
		t.Errorf("status = %d, want %d", se.Status(), lsoda.IstateIllegalInput)
	}
}

// Example demonstrates the Solve convenience wrapper, spec.md section 6.
func Example() {
	f := func(t float64, y, dydt []float64) { dydt[0] = -y[0] }
	table, err := lsoda.Solve(f, []float64{1}, []float64{0, 1}, 1, []float64{1e-8}, []float64{1e-8})
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.4f\n", table.Y[1][0])
	// Output:
	// 0.3679
}
