package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonMesh is the on-disk JSON mesh layout: flat vertex and triangle arrays,
// matching the pipeline's call contract.
type jsonMesh struct {
	Vertices  [][3]float64 `json:"vertices"`
	Triangles [][3]int     `json:"triangles"`
}

// ImportJSON reads a mesh from the JSON format written by Export-side
// tooling and accepted by the pipeline directly.
func ImportJSON(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open JSON file: %v", err))
		return result
	}

	var m jsonMesh
	if err := json.Unmarshal(data, &m); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("malformed JSON mesh: %v", err))
		return result
	}

	if len(m.Vertices) == 0 {
		result.Errors = append(result.Errors, "JSON mesh contains no vertices")
		return result
	}
	if len(m.Triangles) == 0 {
		result.Errors = append(result.Errors, "JSON mesh contains no triangles")
		return result
	}

	result.Vertices = m.Vertices
	result.Triangles = m.Triangles
	return result
}
