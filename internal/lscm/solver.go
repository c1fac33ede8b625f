// Package lscm implements least-squares conformal mapping: it flattens a
// validated 3D triangle mesh into the plane by minimizing per-triangle
// deviation from an angle-preserving map. The conformal energy is assembled
// into a sparse symmetric positive-definite normal-equation system (two real
// unknowns per free vertex) and solved with Jacobi-preconditioned conjugate
// gradients.
package lscm

import (
	"context"
	"errors"
	"math"

	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/solver"
)

// Options tunes the iterative solve. The zero value selects defaults.
type Options struct {
	// MaxIterations caps the CG iteration count. 0 derives a cap from the
	// system size. Exceeding the cap fails with ConvergenceTimeoutError
	// rather than returning a half-converged result.
	MaxIterations int
	// Residual is the relative-residual convergence target. 0 means 1e-12,
	// tight enough that repeated runs agree to well under 1e-9.
	Residual float64
}

// DefaultOptions returns the options used by the pipeline.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) maxIter(unknowns int) int {
	if o.MaxIterations > 0 {
		return o.MaxIterations
	}
	limit := 8 * unknowns
	if limit < 1000 {
		limit = 1000
	}
	return limit
}

func (o Options) residual() float64 {
	if o.Residual > 0 {
		return o.Residual
	}
	return 1e-12
}

// Solve computes a UV parameterization of the validated mesh. When fewer
// than two constraints are supplied the gauge is fixed automatically by
// pinning two boundary vertices of maximal 3D separation. The output is
// rescaled by one global factor so total UV area matches total 3D area,
// making UV units physically comparable to the input.
func Solve(ctx context.Context, m *mesh.ValidatedMesh, pins []solver.Constraint, opts Options) (*solver.UVResult, error) {
	pins, err := completePins(m, pins)
	if err != nil {
		return nil, err
	}

	pinned := make(map[int]mesh.Vec2, len(pins))
	for _, p := range pins {
		pinned[p.Vertex] = mesh.Vec2{U: p.U, V: p.V}
	}

	// Free-variable layout: u of free vertex f at slot f, v at nFree+f.
	// Orphaned vertices (largest-component discards) stay out of the system.
	varOf := make([]int, m.NumVertices())
	nFree := 0
	for v := 0; v < m.NumVertices(); v++ {
		varOf[v] = -1
		if _, isPinned := pinned[v]; !isPinned && m.Contains(v) {
			varOf[v] = nFree
			nFree++
		}
	}

	b := newSysBuilder(2 * nFree)
	for t := 0; t < m.NumTriangles(); t++ {
		assembleTriangle(b, m, t, varOf, nFree, pinned)
	}

	sys := b.compress()
	x := make([]float64, 2*nFree)

	diags := solver.Diagnostics{Method: "lscm"}
	if nFree > 0 {
		diags.ConditionEstimate = conditionEstimate(sys)

		res, cgErr := conjugateGradient(ctx, sys, b.rhs, x, opts.residual(), opts.maxIter(2*nFree))
		if cgErr != nil {
			var de *diagError
			if errors.As(cgErr, &de) {
				return nil, &solver.SingularSystemError{Detail: de.Error()}
			}
			return nil, cgErr
		}
		if res.breakdown {
			return nil, &solver.SingularSystemError{Detail: "conjugate gradient breakdown"}
		}
		if !res.converged {
			return nil, &solver.ConvergenceTimeoutError{Iterations: res.iterations, Residual: res.residual}
		}
		diags.Iterations = res.iterations
		diags.Residual = res.residual
	}

	uv := make([]mesh.Vec2, m.NumVertices())
	for v := 0; v < m.NumVertices(); v++ {
		if p, ok := pinned[v]; ok {
			uv[v] = p
		} else if varOf[v] >= 0 {
			uv[v] = mesh.Vec2{U: x[varOf[v]], V: x[nFree+varOf[v]]}
		}
	}
	for _, c := range uv {
		if math.IsNaN(c.U) || math.IsNaN(c.V) || math.IsInf(c.U, 0) || math.IsInf(c.V, 0) {
			return nil, &solver.SingularSystemError{Detail: "non-finite coordinates in solution"}
		}
	}

	if err := normalizeScale(m, uv); err != nil {
		return nil, err
	}

	return &solver.UVResult{UV: uv, Diagnostics: diags}, nil
}

// rowEntry is one coefficient of a least-squares row: either a free
// variable (idx >= 0) or a pinned contribution folded into the RHS.
type rowEntry struct {
	idx    int
	coef   float64
	pinVal float64
}

// assembleTriangle adds the two least-squares rows (real and imaginary part
// of the conformal residual) of triangle t into the normal equations.
func assembleTriangle(b *sysBuilder, m *mesh.ValidatedMesh, t int, varOf []int, nFree int, pinned map[int]mesh.Vec2) {
	tri := m.Triangle(t)
	p0, p1, p2 := m.Vertex(tri[0]), m.Vertex(tri[1]), m.Vertex(tri[2])

	// Isometric local frame: x along the first edge, y in-plane per the
	// triangle normal, so winding gives positive y for the third vertex.
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	xhat := e1.Normalize()
	yhat := e1.Cross(e2).Normalize().Cross(xhat)

	x1 := e1.Norm()
	x2 := e2.Dot(xhat)
	y2 := e2.Dot(yhat)

	area := 0.5 * x1 * y2
	s := 1 / math.Sqrt(2*area)

	// Complex gradient coefficients W_j of the conformal energy
	// |sum_j W_j z_j|^2 / (2A), split into real (a) and imaginary (b) parts.
	ca := [3]float64{(x2 - x1) * s, (0 - x2) * s, (x1 - 0) * s}
	cb := [3]float64{(y2 - 0) * s, (0 - y2) * s, 0}

	var re, im [6]rowEntry
	for j := 0; j < 3; j++ {
		v := tri[j]
		uIdx, vIdx := -1, -1
		var uPin, vPin float64
		if pv, ok := pinned[v]; ok {
			uPin, vPin = pv.U, pv.V
		} else {
			uIdx = varOf[v]
			vIdx = nFree + varOf[v]
		}
		// Re row: a_j*u_j - b_j*v_j; Im row: b_j*u_j + a_j*v_j.
		re[2*j] = rowEntry{idx: uIdx, coef: ca[j], pinVal: uPin}
		re[2*j+1] = rowEntry{idx: vIdx, coef: -cb[j], pinVal: vPin}
		im[2*j] = rowEntry{idx: uIdx, coef: cb[j], pinVal: uPin}
		im[2*j+1] = rowEntry{idx: vIdx, coef: ca[j], pinVal: vPin}
	}
	accumulateRow(b, re[:])
	accumulateRow(b, im[:])
}

// accumulateRow folds one least-squares row into the normal equations:
// free×free products go into the matrix, free×pinned products into the RHS.
func accumulateRow(b *sysBuilder, row []rowEntry) {
	rhs := 0.0
	for _, e := range row {
		if e.idx < 0 {
			rhs -= e.coef * e.pinVal
		}
	}
	for _, p := range row {
		if p.idx < 0 {
			continue
		}
		for _, q := range row {
			if q.idx >= 0 {
				b.add(p.idx, q.idx, p.coef*q.coef)
			}
		}
		b.addRHS(p.idx, p.coef*rhs)
	}
}

// completePins validates caller constraints and auto-selects pins when
// fewer than two are given, preferring boundary vertices of maximal 3D
// separation (closed meshes fall back to the overall farthest pair).
func completePins(m *mesh.ValidatedMesh, pins []solver.Constraint) ([]solver.Constraint, error) {
	seen := make(map[int]bool, len(pins))
	for _, p := range pins {
		if p.Vertex < 0 || p.Vertex >= m.NumVertices() {
			return nil, &mesh.InputError{Triangle: -1, Vertex: p.Vertex, Msg: "constraint references out-of-range vertex"}
		}
		if !m.Contains(p.Vertex) {
			return nil, &mesh.InputError{Triangle: -1, Vertex: p.Vertex, Msg: "constraint references a vertex outside the retained component"}
		}
		if seen[p.Vertex] {
			return nil, &mesh.InputError{Triangle: -1, Vertex: p.Vertex, Msg: "duplicate constraint vertex"}
		}
		seen[p.Vertex] = true
	}
	if len(pins) >= 2 {
		return pins, nil
	}

	candidates := m.BoundaryVertices()
	if len(candidates) == 0 {
		for v := 0; v < m.NumVertices(); v++ {
			if m.Contains(v) {
				candidates = append(candidates, v)
			}
		}
	}

	if len(pins) == 1 {
		base := pins[0]
		far, dist := farthestFrom(m, base.Vertex, candidates, seen)
		if far < 0 {
			return nil, &solver.SingularSystemError{Detail: "no second vertex available to pin"}
		}
		// Fresh slice: appending to the caller's slice could write into its
		// spare capacity.
		return []solver.Constraint{
			base,
			{Vertex: far, U: base.U + dist, V: base.V},
		}, nil
	}

	v1, v2, dist := farthestPair(m, candidates)
	if v1 < 0 {
		return nil, &solver.SingularSystemError{Detail: "no vertex pair available to pin"}
	}
	return []solver.Constraint{
		{Vertex: v1, U: 0, V: 0},
		{Vertex: v2, U: dist, V: 0},
	}, nil
}

func farthestFrom(m *mesh.ValidatedMesh, from int, candidates []int, exclude map[int]bool) (int, float64) {
	best, bestDist := -1, -1.0
	p := m.Vertex(from)
	for _, v := range candidates {
		if v == from || exclude[v] {
			continue
		}
		if d := p.Dist(m.Vertex(v)); d > bestDist {
			best, bestDist = v, d
		}
	}
	return best, bestDist
}

func farthestPair(m *mesh.ValidatedMesh, candidates []int) (int, int, float64) {
	b1, b2, bestDist := -1, -1, -1.0
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			d := m.Vertex(candidates[i]).Dist(m.Vertex(candidates[j]))
			if d > bestDist {
				b1, b2, bestDist = candidates[i], candidates[j], d
			}
		}
	}
	return b1, b2, bestDist
}

// normalizeScale applies the single global factor sqrt(area3D/areaUV) so the
// pattern comes out in source-mesh units. LSCM preserves angles, not scale.
func normalizeScale(m *mesh.ValidatedMesh, uv []mesh.Vec2) error {
	uvArea := 0.0
	for t := 0; t < m.NumTriangles(); t++ {
		tri := m.Triangle(t)
		uvArea += mesh.TriangleArea2D(uv[tri[0]], uv[tri[1]], uv[tri[2]])
	}
	if uvArea <= 1e-300 {
		return &solver.SingularSystemError{Detail: "solution collapsed to zero UV area"}
	}
	scale := math.Sqrt(m.TotalArea() / uvArea)
	for i := range uv {
		uv[i] = uv[i].Scale(scale)
	}
	return nil
}

// conditionEstimate returns the diagonal-ratio proxy for the condition
// number of the assembled system. It is a diagnostic, not a bound.
func conditionEstimate(a *csrMatrix) float64 {
	d := a.diagonal()
	if len(d) == 0 {
		return 1
	}
	lo, hi := math.Inf(1), 0.0
	for _, v := range d {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo <= 0 {
		return math.Inf(1)
	}
	return hi / lo
}
