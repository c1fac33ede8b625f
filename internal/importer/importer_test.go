package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportOBJ_UnitSquare(t *testing.T) {
	path := writeTemp(t, "square.obj", `
# unit square
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`)
	result := ImportOBJ(path)
	require.True(t, result.OK(), "errors: %v", result.Errors)

	assert.Equal(t, [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, result.Vertices)
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, result.Triangles)
}

func TestImportOBJ_QuadFanTriangulation(t *testing.T) {
	path := writeTemp(t, "quad.obj", `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`)
	result := ImportOBJ(path)
	require.True(t, result.OK())
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, result.Triangles)
}

func TestImportOBJ_SlashAndNegativeIndices(t *testing.T) {
	path := writeTemp(t, "mixed.obj", `
v 0 0 0
v 1 0 0
v 1 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 -1/1/1
`)
	result := ImportOBJ(path)
	require.True(t, result.OK(), "errors: %v", result.Errors)
	assert.Equal(t, [][3]int{{0, 1, 2}}, result.Triangles)
}

func TestImportOBJ_BadFaceIndex(t *testing.T) {
	path := writeTemp(t, "bad.obj", `
v 0 0 0
v 1 0 0
v 1 1 0
f 1 2 9
`)
	result := ImportOBJ(path)
	assert.False(t, result.OK())
	assert.NotEmpty(t, result.Errors)
}

func TestImportOBJ_MissingFile(t *testing.T) {
	result := ImportOBJ(filepath.Join(t.TempDir(), "nope.obj"))
	assert.False(t, result.OK())
}

func TestImportJSON_RoundTrip(t *testing.T) {
	path := writeTemp(t, "mesh.json", `{
  "vertices": [[0,0,0],[1,0,0],[1,1,0],[0,1,0]],
  "triangles": [[0,1,2],[0,2,3]]
}`)
	result := ImportJSON(path)
	require.True(t, result.OK())
	assert.Len(t, result.Vertices, 4)
	assert.Len(t, result.Triangles, 2)
}

func TestImport_DispatchesOnExtension(t *testing.T) {
	result := Import("mesh.stl")
	assert.False(t, result.OK())
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "unsupported mesh format")
}
