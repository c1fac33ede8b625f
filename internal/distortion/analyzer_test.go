package distortion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func identityUV() *solver.UVResult {
	return &solver.UVResult{UV: []mesh.Vec2{
		{U: 0, V: 0}, {U: 1, V: 0}, {U: 1, V: 1}, {U: 0, V: 1},
	}}
}

func TestAnalyze_PerfectUnfoldIsAcceptable(t *testing.T) {
	m := unitSquareMesh(t)
	r := Analyze(m, identityUV(), 0.001)

	assert.True(t, r.Acceptable)
	assert.InDelta(t, 0, r.MaxAngleDistortion, 1e-9)
	assert.InDelta(t, 0, r.MeanAngleDistortion, 1e-9)
	assert.InDelta(t, 1.0, r.AreaRatio.Mean, 1e-12)
	assert.InDelta(t, 1.0, r.AreaRatio.Min, 1e-12)
	assert.InDelta(t, 1.0, r.AreaRatio.Max, 1e-12)
	assert.Zero(t, r.ExceededPercent)
	assert.Len(t, r.Triangles, 2)
}

func TestAnalyze_StretchedUVIsRejected(t *testing.T) {
	m := unitSquareMesh(t)

	// Stretch U by 2×: angles shear and area doubles.
	stretched := &solver.UVResult{UV: []mesh.Vec2{
		{U: 0, V: 0}, {U: 2, V: 0}, {U: 2, V: 1}, {U: 0, V: 1},
	}}
	r := Analyze(m, stretched, 0.001)

	assert.False(t, r.Acceptable)
	assert.Greater(t, r.MaxAngleDistortion, 10.0)
	assert.InDelta(t, 2.0, r.AreaRatio.Mean, 1e-12)
	assert.InDelta(t, 100.0, r.ExceededPercent, 1e-12)
}

func TestAnalyze_ThresholdDerivation(t *testing.T) {
	m := unitSquareMesh(t)
	r := Analyze(m, identityUV(), 0.001)

	// 0.1% relative tolerance maps to 0.09° against a right angle.
	assert.InDelta(t, 0.09, r.ThresholdDeg, 1e-12)
	assert.Equal(t, 0.001, r.Tolerance)
}

func TestAnalyze_ToleranceExceededIsNotAnError(t *testing.T) {
	m := unitSquareMesh(t)
	stretched := &solver.UVResult{UV: []mesh.Vec2{
		{U: 0, V: 0}, {U: 2, V: 0}, {U: 2, V: 1}, {U: 0, V: 1},
	}}

	// Analyze has no error return; a distorted result is still a complete
	// report the caller can inspect.
	r := Analyze(m, stretched, 0.001)
	require.NotNil(t, r)
	assert.Len(t, r.Triangles, m.NumTriangles())
}
