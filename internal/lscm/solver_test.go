package lscm

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshfab/unfold/internal/distortion"
	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/solver"
)

func unitSquareMesh(t *testing.T) *mesh.ValidatedMesh {
	t.Helper()
	m, err := mesh.Validate(
		[][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
		mesh.PolicyStrict,
	)
	require.NoError(t, err)
	return m
}

// gridMesh builds an n×n flat grid of vertices in the Z=0 plane, two
// triangles per cell.
func gridMesh(t *testing.T, n int) *mesh.ValidatedMesh {
	t.Helper()
	var vertices [][3]float64
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			vertices = append(vertices, [3]float64{float64(x), float64(y), 0})
		}
	}
	var triangles [][3]int
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			i := y*n + x
			triangles = append(triangles, [3]int{i, i + 1, i + n + 1})
			triangles = append(triangles, [3]int{i, i + n + 1, i + n})
		}
	}
	m, err := mesh.Validate(vertices, triangles, mesh.PolicyStrict)
	require.NoError(t, err)
	return m
}

// cylinderMesh builds an n×n quarter-cylinder patch: x runs along the axis,
// the cross-section is a 90° arc of radius 1. The surface is developable, so
// an exact flattening exists at every resolution.
func cylinderMesh(t *testing.T, n int) *mesh.ValidatedMesh {
	t.Helper()
	var vertices [][3]float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			theta := float64(j) / float64(n-1) * math.Pi / 2
			vertices = append(vertices, [3]float64{
				float64(i) / float64(n-1),
				math.Cos(theta),
				math.Sin(theta),
			})
		}
	}
	var triangles [][3]int
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-1; j++ {
			k := i*n + j
			triangles = append(triangles, [3]int{k, k + 1, k + n + 1})
			triangles = append(triangles, [3]int{k, k + n + 1, k + n})
		}
	}
	m, err := mesh.Validate(vertices, triangles, mesh.PolicyStrict)
	require.NoError(t, err)
	return m
}

func TestSolve_RefinementKeepsDistortionBounded(t *testing.T) {
	// Refining the triangulation of the same smooth developable surface
	// must not blow up the angle distortion: each resolution stays near
	// zero and finer never exceeds coarser by more than a small factor.
	prev := -1.0
	for _, n := range []int{5, 10, 20} {
		m := cylinderMesh(t, n)
		res, err := Solve(context.Background(), m, nil, DefaultOptions())
		require.NoError(t, err, "n=%d", n)

		r := distortion.Analyze(m, res, 0.001)
		assert.Less(t, r.MaxAngleDistortion, 0.01, "n=%d", n)
		if prev >= 0 {
			assert.LessOrEqual(t, r.MaxAngleDistortion, 2*prev+1e-6, "n=%d", n)
		}
		prev = r.MaxAngleDistortion
	}
}

func TestSolve_FlatSquareIsSimilarityTransform(t *testing.T) {
	m := unitSquareMesh(t)
	res, err := Solve(context.Background(), m, nil, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.UV, 4)

	// A flat patch unfolds to a rigid motion of itself (scale factor 1
	// after area normalization): every pairwise UV distance must match the
	// 3D distance.
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			d3 := m.Vertex(i).Dist(m.Vertex(j))
			d2 := res.UV[i].Dist(res.UV[j])
			assert.InDelta(t, d3, d2, 1e-9, "pair (%d,%d)", i, j)
		}
	}
}

func TestSolve_AreaNormalization(t *testing.T) {
	m := gridMesh(t, 4)
	res, err := Solve(context.Background(), m, nil, DefaultOptions())
	require.NoError(t, err)

	uvArea := 0.0
	for ti := 0; ti < m.NumTriangles(); ti++ {
		tri := m.Triangle(ti)
		uvArea += mesh.TriangleArea2D(res.UV[tri[0]], res.UV[tri[1]], res.UV[tri[2]])
	}
	assert.InDelta(t, m.TotalArea(), uvArea, 1e-9)
}

func TestSolve_GaugeInvariance(t *testing.T) {
	m := gridMesh(t, 4)

	resA, err := Solve(context.Background(), m, []solver.Constraint{
		{Vertex: 0, U: 0, V: 0},
		{Vertex: 3, U: 3, V: 0},
	}, DefaultOptions())
	require.NoError(t, err)

	resB, err := Solve(context.Background(), m, []solver.Constraint{
		{Vertex: 12, U: 5, V: 7},
		{Vertex: 15, U: 5, V: 10},
	}, DefaultOptions())
	require.NoError(t, err)

	// Different pins only change the similarity gauge: after area
	// normalization all pairwise distances agree.
	for i := 0; i < m.NumVertices(); i++ {
		for j := i + 1; j < m.NumVertices(); j++ {
			assert.InDelta(t, resA.UV[i].Dist(resA.UV[j]), resB.UV[i].Dist(resB.UV[j]), 1e-7,
				"pair (%d,%d)", i, j)
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	m := gridMesh(t, 5)

	resA, err := Solve(context.Background(), m, nil, DefaultOptions())
	require.NoError(t, err)
	resB, err := Solve(context.Background(), m, nil, DefaultOptions())
	require.NoError(t, err)

	for i := range resA.UV {
		assert.InDelta(t, resA.UV[i].U, resB.UV[i].U, 1e-12)
		assert.InDelta(t, resA.UV[i].V, resB.UV[i].V, 1e-12)
	}
}

func TestSolve_FoldedSheetUnfoldsFlat(t *testing.T) {
	// Two unit quads sharing an edge, folded 90° along it. Developable:
	// unfolds to a 1×2 rectangle with area ratio 1.
	vertices := [][3]float64{
		{0, 0, 0}, {1, 0, 0},
		{0, 1, 0}, {1, 1, 0},
		{0, 1, 1}, {1, 1, 1},
	}
	triangles := [][3]int{
		{0, 1, 3}, {0, 3, 2},
		{2, 3, 5}, {2, 5, 4},
	}
	m, err := mesh.Validate(vertices, triangles, mesh.PolicyStrict)
	require.NoError(t, err)

	res, err := Solve(context.Background(), m, nil, DefaultOptions())
	require.NoError(t, err)

	// The unfolded sheet is isometric to the source: edge lengths survive.
	for ti := 0; ti < m.NumTriangles(); ti++ {
		tri := m.Triangle(ti)
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			d3 := m.Vertex(a).Dist(m.Vertex(b))
			d2 := res.UV[a].Dist(res.UV[b])
			assert.InDelta(t, d3, d2, 1e-6, "edge (%d,%d)", a, b)
		}
	}
}

func TestSolve_IterationCapTimesOut(t *testing.T) {
	m := gridMesh(t, 6)
	_, err := Solve(context.Background(), m, nil, Options{MaxIterations: 2})

	var timeoutErr *solver.ConvergenceTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.LessOrEqual(t, timeoutErr.Iterations, 2)
}

func TestSolve_CancelledContext(t *testing.T) {
	m := gridMesh(t, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, m, nil, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolve_InvalidConstraintVertex(t *testing.T) {
	m := unitSquareMesh(t)
	_, err := Solve(context.Background(), m, []solver.Constraint{
		{Vertex: 99, U: 0, V: 0},
		{Vertex: 1, U: 1, V: 0},
	}, DefaultOptions())

	var inputErr *mesh.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 99, inputErr.Vertex)
}

func TestSolve_AutoPinPicksFarthestBoundaryPair(t *testing.T) {
	m := unitSquareMesh(t)
	pins, err := completePins(m, nil)
	require.NoError(t, err)
	require.Len(t, pins, 2)

	// Diagonal corners are the farthest boundary pair.
	d := m.Vertex(pins[0].Vertex).Dist(m.Vertex(pins[1].Vertex))
	assert.InDelta(t, math.Sqrt2, d, 1e-12)
}

func TestSolve_SinglePinLeavesCallerSliceAlone(t *testing.T) {
	m := unitSquareMesh(t)

	// Caller slice with spare capacity: auto-completing the second pin
	// must not write into the caller's backing array.
	pins := make([]solver.Constraint, 1, 4)
	pins[0] = solver.Constraint{Vertex: 0, U: 0, V: 0}

	full, err := completePins(m, pins)
	require.NoError(t, err)
	require.Len(t, full, 2)
	assert.Equal(t, pins[0], full[0])

	assert.Equal(t, solver.Constraint{}, pins[:cap(pins)][1],
		"spare capacity of the caller's slice was overwritten")
}

func TestSolve_DiagnosticsPopulated(t *testing.T) {
	m := gridMesh(t, 4)
	res, err := Solve(context.Background(), m, nil, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "lscm", res.Diagnostics.Method)
	assert.Greater(t, res.Diagnostics.Iterations, 0)
	assert.GreaterOrEqual(t, res.Diagnostics.ConditionEstimate, 1.0)
	assert.LessOrEqual(t, res.Diagnostics.Residual, 1e-12)
}
