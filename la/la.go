// Package la provides the dense linear-algebra kernels the integrator's
// corrector needs: LU factorization with partial pivoting, triangular
// solves, and the weighted-norm primitives used throughout the step/order
// selection logic. It is a small, purpose-built stand-in for a BLAS/LAPACK
// call a larger numerical package would make, written the way the rest of
// this codebase writes its vector arithmetic: plain loops over []float64,
// no cgo.
package la

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Matrix is a dense, row-major n*n matrix addressed [row][col], both
// 0-indexed. It backs the corrector's iteration matrix P = I - h*el1*J.
type Matrix struct {
	N    int
	Rows [][]float64
}

// NewMatrix allocates a zeroed n*n matrix.
func NewMatrix(n int) *Matrix {
	rows := make([][]float64, n)
	backing := make([]float64, n*n)
	for i := range rows {
		rows[i] = backing[i*n : (i+1)*n]
	}
	return &Matrix{N: n, Rows: rows}
}

// SetIdentity resets m to the identity matrix.
func (m *Matrix) SetIdentity() {
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			m.Rows[i][j] = 0
		}
		m.Rows[i][i] = 1
	}
}

// ErrSingular is returned by Factor when a pivot column is exactly zero.
type ErrSingular struct {
	Column int
}

func (e *ErrSingular) Error() string {
	return "la: singular matrix, zero pivot at column " + itoa(e.Column)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Factor performs an in-place dense LU factorization of m with partial
// pivoting, LINPACK dgefa-style: on return m.Rows holds L (unit lower,
// diagonal implicit) and U (upper) overwritten in place, and ipvt[k] holds
// the row index swapped with row k at step k. Returns ErrSingular without
// aborting factorization of the remaining columns, matching dgefa's
// behaviour of flagging info but continuing so later columns are usable by
// the caller for diagnostics.
func Factor(m *Matrix, ipvt []int) error {
	n := m.N
	var singularAt = -1
	for k := 0; k < n-1; k++ {
		// find pivot: row with largest magnitude in column k, rows k..n-1
		p := k
		pmax := math.Abs(m.Rows[k][k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(m.Rows[i][k]); v > pmax {
				pmax = v
				p = i
			}
		}
		ipvt[k] = p
		if pmax == 0 {
			if singularAt < 0 {
				singularAt = k
			}
			continue
		}
		if p != k {
			// dgefa swaps only columns k..n-1; the multipliers already
			// stored left of column k stay in place for Solve.
			for j := k; j < n; j++ {
				m.Rows[k][j], m.Rows[p][j] = m.Rows[p][j], m.Rows[k][j]
			}
		}
		pivot := m.Rows[k][k]
		for i := k + 1; i < n; i++ {
			factor := m.Rows[i][k] / pivot
			m.Rows[i][k] = factor
			if factor != 0 {
				floats.AddScaled(m.Rows[i][k+1:n], -factor, m.Rows[k][k+1:n])
			}
		}
	}
	ipvt[n-1] = n - 1
	if m.Rows[n-1][n-1] == 0 && singularAt < 0 {
		singularAt = n - 1
	}
	if singularAt >= 0 {
		return &ErrSingular{Column: singularAt}
	}
	return nil
}

// Solve solves m*x = b in place given the factorization and pivot vector
// produced by Factor. b is overwritten with the solution x. dgesl-style:
// forward substitution against L (with pivoting applied to b), then
// backward substitution against U.
func Solve(m *Matrix, ipvt []int, b []float64) {
	n := m.N
	for k := 0; k < n-1; k++ {
		p := ipvt[k]
		if p != k {
			b[k], b[p] = b[p], b[k]
		}
		if t := b[k]; t != 0 {
			for i := k + 1; i < n; i++ {
				b[i] -= t * m.Rows[i][k]
			}
		}
	}
	for k := n - 1; k >= 0; k-- {
		b[k] /= m.Rows[k][k]
		t := -b[k]
		if t != 0 {
			for i := 0; i < k; i++ {
				b[i] += t * m.Rows[i][k]
			}
		}
	}
}

// WeightedNorm computes the weighted root-mean-square norm
// sqrt( (1/n) * sum_i (v[i]*w[i])^2 ), the norm used throughout the
// corrector and error test to judge convergence and local error against
// the per-component tolerance scale ewt.
func WeightedNorm(v, w []float64) float64 {
	n := len(v)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		t := v[i] * w[i]
		sum += t * t
	}
	return math.Sqrt(sum / float64(n))
}

// Iamax returns the index of the element of largest magnitude in x.
//
// The reference LSODA's idamax1 accumulates the running maximum with an
// integer variable while comparing floating-point magnitudes, a latent bug
// noted in the design review; this always accumulates and compares as
// float64.
func Iamax(x []float64) int {
	if len(x) == 0 {
		return -1
	}
	best := 0
	bestMag := math.Abs(x[0])
	for i := 1; i < len(x); i++ {
		if mag := math.Abs(x[i]); mag > bestMag {
			bestMag = mag
			best = i
		}
	}
	return best
}

// MaxAbs returns the maximum absolute value among x's elements.
func MaxAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Abs(x[Iamax(x)])
}
