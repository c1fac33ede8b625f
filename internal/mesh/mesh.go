// Package mesh defines the triangle-mesh data model and its topology
// validator. Raw caller-supplied vertex/triangle buffers enter through
// Validate, which is the only way to obtain a ValidatedMesh; everything
// downstream (solvers, pathfinder, analyzer) consumes the validated form
// and can rely on its invariants without re-checking.
package mesh

import "sort"

// Triangle is a triple of vertex indices with consistent winding.
type Triangle [3]int

// Edge is an undirected mesh edge. A < B always holds; build edges with
// MakeEdge so map keys compare correctly.
type Edge struct {
	A, B int
}

// MakeEdge returns the normalized undirected edge between vertices a and b.
func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// ValidatedMesh is an immutable, topologically sound triangle mesh with
// derived adjacency. It can only be produced by Validate. Vertex indices are
// stable: under the largest-component policy, vertices of discarded
// components keep their slots but belong to no triangle.
type ValidatedMesh struct {
	vertices  []Vec3
	triangles []Triangle

	edgeTris   map[Edge][]int // edge -> incident triangle indices (1 or 2)
	vertexTris [][]int        // vertex -> incident triangle indices
	boundary   map[Edge]bool  // edges with exactly one incident triangle
	normals    []Vec3         // area-weighted unit vertex normals
	areas      []float64      // per-triangle 3D area

	discardedVertices  int
	discardedTriangles int
}

// NumVertices returns the size of the vertex buffer, including any vertices
// orphaned by the largest-component policy.
func (m *ValidatedMesh) NumVertices() int { return len(m.vertices) }

// NumTriangles returns the number of retained triangles.
func (m *ValidatedMesh) NumTriangles() int { return len(m.triangles) }

// Vertex returns the position of vertex i.
func (m *ValidatedMesh) Vertex(i int) Vec3 { return m.vertices[i] }

// Triangle returns the vertex indices of triangle t.
func (m *ValidatedMesh) Triangle(t int) Triangle { return m.triangles[t] }

// Triangles returns the retained triangle list. Callers must not modify it.
func (m *ValidatedMesh) Triangles() []Triangle { return m.triangles }

// TriangleArea returns the precomputed 3D area of triangle t.
func (m *ValidatedMesh) TriangleArea(t int) float64 { return m.areas[t] }

// EdgeTriangles returns the triangles incident to the given edge (nil when
// the edge does not exist in the mesh).
func (m *ValidatedMesh) EdgeTriangles(e Edge) []int { return m.edgeTris[e] }

// VertexTriangles returns the triangles incident to vertex v.
func (m *ValidatedMesh) VertexTriangles(v int) []int { return m.vertexTris[v] }

// IsBoundaryEdge reports whether e has exactly one incident triangle.
func (m *ValidatedMesh) IsBoundaryEdge(e Edge) bool { return m.boundary[e] }

// BoundaryVertices returns the sorted indices of vertices lying on at least
// one boundary edge.
func (m *ValidatedMesh) BoundaryVertices() []int {
	onBoundary := make(map[int]bool, len(m.boundary)*2)
	for e := range m.boundary {
		onBoundary[e.A] = true
		onBoundary[e.B] = true
	}
	out := make([]int, 0, len(onBoundary))
	for v := range onBoundary {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// VertexNormal returns the area-weighted unit normal at vertex v. Orphaned
// vertices have a zero normal.
func (m *ValidatedMesh) VertexNormal(v int) Vec3 { return m.normals[v] }

// Contains reports whether vertex v belongs to the retained component, i.e.
// is referenced by at least one retained triangle.
func (m *ValidatedMesh) Contains(v int) bool {
	return v >= 0 && v < len(m.vertexTris) && len(m.vertexTris[v]) > 0
}

// Discarded returns the vertex and triangle counts dropped by the
// largest-component policy (both zero under strict validation).
func (m *ValidatedMesh) Discarded() (vertices, triangles int) {
	return m.discardedVertices, m.discardedTriangles
}

// TotalArea returns the summed 3D area of all retained triangles.
func (m *ValidatedMesh) TotalArea() float64 {
	total := 0.0
	for _, a := range m.areas {
		total += a
	}
	return total
}
