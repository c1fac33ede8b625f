// Package importer reads triangle meshes from disk for the unfolding
// pipeline. Wavefront OBJ and a plain JSON mesh format are supported;
// polygon faces are fan-triangulated on import.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ImportResult holds the results of an import operation. Errors are fatal
// to the import; Warnings describe skipped or repaired content.
type ImportResult struct {
	Vertices  [][3]float64
	Triangles [][3]int
	Errors    []string
	Warnings  []string
}

// OK reports whether the import produced a usable mesh.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Vertices) > 0 && len(r.Triangles) > 0
}

// Import dispatches on the file extension.
func Import(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return ImportOBJ(path)
	case ".json":
		return ImportJSON(path)
	default:
		return ImportResult{Errors: []string{
			fmt.Sprintf("unsupported mesh format %q (want .obj or .json)", filepath.Ext(path)),
		}}
	}
}
