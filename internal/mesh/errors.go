package mesh

import "fmt"

// InputError reports malformed or mismatched input arrays, such as a triangle
// referencing a vertex index that does not exist.
type InputError struct {
	Triangle int // offending triangle index, or -1 when not triangle-specific
	Vertex   int // offending vertex id, or -1
	Msg      string
}

func (e *InputError) Error() string {
	if e.Triangle >= 0 && e.Vertex >= 0 {
		return fmt.Sprintf("invalid input: triangle %d references out-of-range vertex %d", e.Triangle, e.Vertex)
	}
	return fmt.Sprintf("invalid input: %s", e.Msg)
}

// DegenerateGeometryError reports a triangle with (near-)zero area.
type DegenerateGeometryError struct {
	Triangle int
	Area     float64
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry: triangle %d has area %.3g", e.Triangle, e.Area)
}

// NonManifoldError reports an edge shared by more than two triangles.
type NonManifoldError struct {
	Edge      Edge
	Incidence int
}

func (e *NonManifoldError) Error() string {
	return fmt.Sprintf("non-manifold mesh: edge (%d,%d) is shared by %d triangles", e.Edge.A, e.Edge.B, e.Incidence)
}

// DisconnectedMeshError reports a mesh with more than one connected component
// under the strict component policy.
type DisconnectedMeshError struct {
	Components int
}

func (e *DisconnectedMeshError) Error() string {
	return fmt.Sprintf("disconnected mesh: %d connected components", e.Components)
}
