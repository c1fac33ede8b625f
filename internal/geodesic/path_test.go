package geodesic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshfab/unfold/internal/mesh"
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

func TestComputePath_DirectEdge(t *testing.T) {
	m := unitSquareMesh(t)
	p, err := ComputePath(m, 0, 2, false)
	require.NoError(t, err)

	// 0 and 2 share the diagonal edge.
	assert.Equal(t, []int{0, 2}, p.Vertices)
	assert.InDelta(t, math.Sqrt2, p.Length, 1e-12)
}

func TestComputePath_LexicographicTieBreak(t *testing.T) {
	m := unitSquareMesh(t)

	// 1→3 has two equal-length edge paths, [1,0,3] and [1,2,3]; the
	// lexicographically smaller sequence must win.
	p, err := ComputePath(m, 1, 3, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 3}, p.Vertices)
	assert.InDelta(t, 2.0, p.Length, 1e-12)
}

func TestComputePath_StraightenedMatchesEuclidean(t *testing.T) {
	m := unitSquareMesh(t)

	// On a flat mesh the straightened corner-to-corner path collapses to
	// the straight diagonal through the interior.
	p, err := ComputePath(m, 1, 3, true)
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt2, p.Length, 1e-9)
	require.Len(t, p.Points, 3)
	mid := p.Points[1]
	assert.InDelta(t, 0.5, mid.X, 1e-9)
	assert.InDelta(t, 0.5, mid.Y, 1e-9)
}

func TestComputePath_StraighteningNeverLengthens(t *testing.T) {
	// Folded sheet: straightening across the fold must not increase length.
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

	edgePath, err := ComputePath(m, 0, 5, false)
	require.NoError(t, err)
	straight, err := ComputePath(m, 0, 5, true)
	require.NoError(t, err)

	assert.LessOrEqual(t, straight.Length, edgePath.Length+1e-12)

	// Unfolding the fold flat makes 0→5 a straight line across a 1×2
	// sheet: the refined path reaches that exact geodesic length.
	assert.InDelta(t, math.Sqrt(5), straight.Length, 1e-9)
}

func TestComputePath_SameSourceAndTarget(t *testing.T) {
	m := unitSquareMesh(t)
	p, err := ComputePath(m, 2, 2, true)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, p.Vertices)
	assert.Zero(t, p.Length)
}

func TestComputePath_OutOfRangeVertex(t *testing.T) {
	m := unitSquareMesh(t)
	_, err := ComputePath(m, 0, 42, false)

	var inputErr *mesh.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 42, inputErr.Vertex)
}

func TestComputePath_UnreachableOrphanVertex(t *testing.T) {
	// Largest-component validation orphans the island vertices but keeps
	// their slots; pathing to one must fail cleanly.
	vertices := [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{10, 0, 0}, {11, 0, 0}, {10, 1, 0},
	}
	triangles := [][3]int{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}}
	m, err := mesh.Validate(vertices, triangles, mesh.PolicyLargest)
	require.NoError(t, err)

	_, err = ComputePath(m, 0, 4, false)
	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, 4, unreachable.Target)
}

func TestMultiSource_Distances(t *testing.T) {
	m := unitSquareMesh(t)
	dist, err := MultiSource(m, []int{1, 3})
	require.NoError(t, err)
	require.Len(t, dist, 4)

	assert.Zero(t, dist[1])
	assert.Zero(t, dist[3])
	assert.InDelta(t, 1.0, dist[0], 1e-12)
	assert.InDelta(t, 1.0, dist[2], 1e-12)
}

func TestMultiSource_NoSources(t *testing.T) {
	m := unitSquareMesh(t)
	_, err := MultiSource(m, nil)
	var inputErr *mesh.InputError
	assert.ErrorAs(t, err, &inputErr)
}
