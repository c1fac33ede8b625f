// Package geodesic computes surface-constrained shortest paths on a
// validated mesh. Paths run along the edge graph (Dijkstra over 3D edge
// lengths) with an optional taut-string refinement that unfolds the triangle
// fan around each interior path vertex and shortcuts through it, giving a
// closer approximation of the true surface geodesic. Used by the pipeline to
// place fold lines.
package geodesic

import (
	"fmt"
	"math"

	"github.com/meshfab/unfold/internal/mesh"
)

// Path is an ordered polyline along the surface from source to target.
// Vertices is the edge-graph vertex sequence the path was derived from;
// Points may contain additional edge-crossing points introduced by
// straightening. Ownership passes to the caller.
type Path struct {
	Source   int         `json:"source"`
	Target   int         `json:"target"`
	Vertices []int       `json:"vertices"`
	Points   []mesh.Vec3 `json:"points"`
	Length   float64     `json:"length"`
}

// UnreachableError reports that no surface path connects source and target,
// which happens when they lie in different connected components.
type UnreachableError struct {
	Source, Target int
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("no path: vertex %d cannot reach vertex %d", e.Source, e.Target)
}

// ComputePath returns the shortest edge-graph path between two vertices,
// optionally straightened. Among equal-weight shortest paths the
// lexicographically smallest vertex-index sequence is returned, so results
// are deterministic on symmetric meshes.
func ComputePath(m *mesh.ValidatedMesh, source, target int, straighten bool) (*Path, error) {
	if err := checkVertex(m, source); err != nil {
		return nil, err
	}
	if err := checkVertex(m, target); err != nil {
		return nil, err
	}

	adj := buildAdjacency(m)

	distS := dijkstra(m, adj, []int{source})
	if math.IsInf(distS[target], 1) {
		return nil, &UnreachableError{Source: source, Target: target}
	}

	var verts []int
	if source == target {
		verts = []int{source}
	} else {
		distT := dijkstra(m, adj, []int{target})
		verts = lexSmallestPath(m, adj, source, target, distS, distT)
	}

	p := &Path{Source: source, Target: target, Vertices: verts}
	p.Points = make([]mesh.Vec3, len(verts))
	for i, v := range verts {
		p.Points[i] = m.Vertex(v)
	}

	if straighten && len(verts) > 2 {
		p.Points = straightenPath(m, verts)
	}

	p.Length = polylineLength(p.Points)
	return p, nil
}

// MultiSource runs one Dijkstra pass from all sources at once and returns
// the per-vertex surface distance to the nearest source (+Inf where
// unreachable). Reused when scoring many candidate fold lines.
func MultiSource(m *mesh.ValidatedMesh, sources []int) ([]float64, error) {
	if len(sources) == 0 {
		return nil, &mesh.InputError{Triangle: -1, Vertex: -1, Msg: "no source vertices given"}
	}
	for _, s := range sources {
		if err := checkVertex(m, s); err != nil {
			return nil, err
		}
	}
	return dijkstra(m, buildAdjacency(m), sources), nil
}

func checkVertex(m *mesh.ValidatedMesh, v int) error {
	if v < 0 || v >= m.NumVertices() {
		return &mesh.InputError{Triangle: -1, Vertex: v, Msg: "path endpoint out of range"}
	}
	return nil
}

func polylineLength(pts []mesh.Vec3) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i].Dist(pts[i-1])
	}
	return total
}
