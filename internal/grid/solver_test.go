package grid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/solver"
)

// tiltedSquare returns the unit square rotated out of the Z=0 plane around
// the X axis, still perfectly flat.
func tiltedSquare(t *testing.T) *mesh.ValidatedMesh {
	t.Helper()
	// 45° tilt: y' = y/√2, z' = y/√2.
	s := 0.7071067811865476
	m, err := mesh.Validate(
		[][3]float64{
			{0, 0, 0},
			{1, 0, 0},
			{1, s, s},
			{0, s, s},
		},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
		mesh.PolicyStrict,
	)
	require.NoError(t, err)
	return m
}

func TestSolve_TiltedFlatPatchIsIsometric(t *testing.T) {
	m := tiltedSquare(t)
	res, err := Solve(context.Background(), m, DefaultOptions())
	require.NoError(t, err)

	// The patch is flat, so projecting onto its own plane preserves all
	// pairwise distances.
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			d3 := m.Vertex(i).Dist(m.Vertex(j))
			d2 := res.UV[i].Dist(res.UV[j])
			assert.InDelta(t, d3, d2, 1e-9, "pair (%d,%d)", i, j)
		}
	}
	assert.Equal(t, "grid", res.Diagnostics.Method)
	assert.Zero(t, res.Diagnostics.Iterations)
}

func TestSolve_AreaMatchesSource(t *testing.T) {
	m := tiltedSquare(t)
	res, err := Solve(context.Background(), m, DefaultOptions())
	require.NoError(t, err)

	uvArea := 0.0
	for ti := 0; ti < m.NumTriangles(); ti++ {
		tri := m.Triangle(ti)
		uvArea += mesh.TriangleArea2D(res.UV[tri[0]], res.UV[tri[1]], res.UV[tri[2]])
	}
	assert.InDelta(t, m.TotalArea(), uvArea, 1e-9)
}

func TestSolve_CollinearCloudIsSingular(t *testing.T) {
	// A long thin strip whose vertices sit on a line up to 1e-7 jitter:
	// the triangles pass the degenerate-area check, but the covariance has
	// no usable second axis so the projection plane is undefined.
	m, err := mesh.Validate(
		[][3]float64{
			{0, 0, 0},
			{1, 1e-7, 0},
			{2, 0, 0},
			{3, 1e-7, 0},
		},
		[][3]int{{0, 1, 2}, {1, 3, 2}},
		mesh.PolicyStrict,
	)
	require.NoError(t, err)

	_, err = Solve(context.Background(), m, DefaultOptions())
	var singErr *solver.SingularSystemError
	require.ErrorAs(t, err, &singErr)
}

func TestSolve_CancelledContext(t *testing.T) {
	m := tiltedSquare(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, m, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
