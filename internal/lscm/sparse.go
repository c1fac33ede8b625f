package lscm

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// coord addresses one entry of the symmetric normal-equation matrix.
type coord struct {
	row, col int
}

// sysBuilder accumulates normal-equation entries by coordinate before
// compression. Duplicate contributions from adjacent triangles sum in place.
type sysBuilder struct {
	n       int
	entries map[coord]float64
	rhs     []float64
}

func newSysBuilder(n int) *sysBuilder {
	return &sysBuilder{
		n:       n,
		entries: make(map[coord]float64, n*8),
		rhs:     make([]float64, n),
	}
}

func (b *sysBuilder) add(row, col int, v float64) {
	b.entries[coord{row, col}] += v
}

func (b *sysBuilder) addRHS(row int, v float64) {
	b.rhs[row] += v
}

// compress converts the accumulated entries into CSR form. Entries are
// sorted by coordinate so the result (and therefore the CG iteration) is
// byte-for-byte deterministic across runs.
func (b *sysBuilder) compress() *csrMatrix {
	coords := make([]coord, 0, len(b.entries))
	for c := range b.entries {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].row != coords[j].row {
			return coords[i].row < coords[j].row
		}
		return coords[i].col < coords[j].col
	})

	m := &csrMatrix{
		n:      b.n,
		rowPtr: make([]int, b.n+1),
		cols:   make([]int, len(coords)),
		vals:   make([]float64, len(coords)),
	}
	for i, c := range coords {
		m.cols[i] = c.col
		m.vals[i] = b.entries[c]
		m.rowPtr[c.row+1] = i + 1
	}
	for r := 1; r <= b.n; r++ {
		if m.rowPtr[r] < m.rowPtr[r-1] {
			m.rowPtr[r] = m.rowPtr[r-1]
		}
	}
	return m
}

// csrMatrix is a compressed-sparse-row square matrix.
type csrMatrix struct {
	n      int
	rowPtr []int
	cols   []int
	vals   []float64
}

// mulVec computes dst = A·x.
func (m *csrMatrix) mulVec(dst, x []float64) {
	for r := 0; r < m.n; r++ {
		sum := 0.0
		for i := m.rowPtr[r]; i < m.rowPtr[r+1]; i++ {
			sum += m.vals[i] * x[m.cols[i]]
		}
		dst[r] = sum
	}
}

// diagonal extracts the matrix diagonal (used as the Jacobi preconditioner
// and for the condition estimate).
func (m *csrMatrix) diagonal() []float64 {
	d := make([]float64, m.n)
	for r := 0; r < m.n; r++ {
		for i := m.rowPtr[r]; i < m.rowPtr[r+1]; i++ {
			if m.cols[i] == r {
				d[r] = m.vals[i]
			}
		}
	}
	return d
}

// cgResult reports how a conjugate-gradient run ended.
type cgResult struct {
	iterations int
	residual   float64
	converged  bool
	breakdown  bool
}

// cancelCheckStride is how many CG iterations run between context checks.
const cancelCheckStride = 64

// conjugateGradient solves A·x = b for symmetric positive-definite A with a
// Jacobi preconditioner, writing the solution into x. It stops at relative
// residual tol or after maxIter iterations, whichever comes first, and
// checks ctx between batches of iterations so a caller-side pipeline can
// cancel a long solve.
func conjugateGradient(ctx context.Context, a *csrMatrix, b, x []float64, tol float64, maxIter int) (cgResult, error) {
	n := a.n
	diag := a.diagonal()
	for i, d := range diag {
		if d <= 0 || math.IsNaN(d) {
			return cgResult{}, &diagError{index: i, value: d}
		}
	}

	r := make([]float64, n)
	z := make([]float64, n)
	p := make([]float64, n)
	ap := make([]float64, n)

	a.mulVec(ap, x)
	floats.SubTo(r, b, ap)

	bNorm := floats.Norm(b, 2)
	if bNorm == 0 {
		bNorm = 1
	}

	applyPrecond(z, r, diag)
	copy(p, z)
	rz := floats.Dot(r, z)

	res := cgResult{}
	for res.iterations = 0; res.iterations < maxIter; res.iterations++ {
		if res.iterations%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		res.residual = floats.Norm(r, 2) / bNorm
		if res.residual <= tol {
			res.converged = true
			return res, nil
		}

		a.mulVec(ap, p)
		pap := floats.Dot(p, ap)
		if pap <= 0 || math.IsNaN(pap) {
			res.breakdown = true
			return res, nil
		}

		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		applyPrecond(z, r, diag)
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext

		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}

	res.residual = floats.Norm(r, 2) / bNorm
	res.converged = res.residual <= tol
	return res, nil
}

func applyPrecond(z, r, diag []float64) {
	for i := range z {
		z[i] = r[i] / diag[i]
	}
}

// diagError flags a non-positive diagonal entry, which means the assembled
// system cannot be positive definite.
type diagError struct {
	index int
	value float64
}

func (e *diagError) Error() string {
	return "non-positive diagonal entry in normal equations"
}
