package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/pipeline"
	"github.com/meshfab/unfold/internal/solver"
)

func TestParsePins(t *testing.T) {
	pins, err := parsePins([]string{"0:0:0", "14:120.5:-3"})
	require.NoError(t, err)
	assert.Equal(t, []solver.Constraint{
		{Vertex: 0, U: 0, V: 0},
		{Vertex: 14, U: 120.5, V: -3},
	}, pins)
}

func TestParsePins_Malformed(t *testing.T) {
	for _, spec := range []string{"0:0", "a:0:0", "0:x:0", "0:0:y"} {
		_, err := parsePins([]string{spec})
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestParseFolds(t *testing.T) {
	folds, err := parseFolds([]string{"3:27"})
	require.NoError(t, err)
	assert.Equal(t, []pipeline.FoldSpec{{Source: 3, Target: 27}}, folds)

	_, err = parseFolds([]string{"3"})
	assert.Error(t, err)
}

func TestApplyFlags_OverridesOnlySetValues(t *testing.T) {
	s := pipeline.DefaultSettings()
	applyFlags(&s, "grid", 0, "", 0, -1, false)

	assert.Equal(t, pipeline.MethodGrid, s.Method)
	assert.Equal(t, 0.001, s.Tolerance, "unset tolerance keeps config value")
	assert.Equal(t, mesh.PolicyStrict, s.ComponentPolicy)
	assert.True(t, s.Straighten)
}

func TestCheckSettings(t *testing.T) {
	s := pipeline.DefaultSettings()
	assert.NoError(t, checkSettings(s))

	s.Method = "spline"
	assert.Error(t, checkSettings(s))

	s = pipeline.DefaultSettings()
	s.ComponentPolicy = "all"
	assert.Error(t, checkSettings(s))
}
