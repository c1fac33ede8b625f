package geodesic

import (
	"math"

	"github.com/meshfab/unfold/internal/mesh"
)

// straightenPath applies one taut-string pass over the interior vertices of
// an edge-graph path. For each interior vertex the incident triangle fan
// between the two path edges is unfolded into a plane; when the fan wedge
// opens less than π the path is shortcut straight through it, replacing the
// vertex with the points where the straight segment crosses the fan edges.
// Vertices whose fans are blocked (wedge ≥ π on both sides, or a boundary
// interrupts the fan) are kept as-is.
func straightenPath(m *mesh.ValidatedMesh, verts []int) []mesh.Vec3 {
	pts := []mesh.Vec3{m.Vertex(verts[0])}
	for i := 1; i < len(verts)-1; i++ {
		crossings, ok := shortcutAtVertex(m, verts[i-1], verts[i], verts[i+1])
		if ok {
			pts = append(pts, crossings...)
		} else {
			pts = append(pts, m.Vertex(verts[i]))
		}
	}
	return append(pts, m.Vertex(verts[len(verts)-1]))
}

// fan describes the ring of triangles around a vertex between two of its
// neighbors: the ordered ring vertices from a to b and the wedge angle each
// triangle contributes at the center.
type fan struct {
	ring   []int
	angles []float64
	total  float64
}

// shortcutAtVertex tries to replace path vertex v with edge crossings of the
// straight segment a→b through an unfolded fan around v. It prefers the
// side with the smaller wedge angle; both sides are tried on closed fans.
func shortcutAtVertex(m *mesh.ValidatedMesh, a, v, b int) ([]mesh.Vec3, bool) {
	var best *fan
	for _, start := range m.EdgeTriangles(mesh.MakeEdge(v, a)) {
		f, ok := walkFan(m, v, a, b, start)
		if !ok || f.total >= math.Pi {
			continue
		}
		if best == nil || f.total < best.total {
			best = f
		}
	}
	if best == nil {
		return nil, false
	}
	return intersectFan(m, v, best)
}

// walkFan walks triangle-to-triangle around v starting from the triangle
// startTri (which must contain edge (v,a)) until it reaches neighbor b or a
// boundary. Returns the ordered ring of neighbors and per-step wedge angles.
func walkFan(m *mesh.ValidatedMesh, v, a, b, startTri int) (*fan, bool) {
	f := &fan{ring: []int{a}}
	center := m.Vertex(v)
	prev := a
	tri := startTri
	maxSteps := len(m.VertexTriangles(v))

	for step := 0; step < maxSteps; step++ {
		w := thirdVertex(m.Triangle(tri), v, prev)
		if w < 0 {
			return nil, false
		}
		ang := angleBetween(m.Vertex(prev).Sub(center), m.Vertex(w).Sub(center))
		f.ring = append(f.ring, w)
		f.angles = append(f.angles, ang)
		f.total += ang

		if w == b {
			return f, true
		}

		next := otherTriangle(m, mesh.MakeEdge(v, w), tri)
		if next < 0 {
			return nil, false // boundary interrupts the fan
		}
		prev = w
		tri = next
	}
	return nil, false
}

// intersectFan unfolds the fan into a plane (v at the origin, first ring
// edge along +x) and intersects the straight a→b segment with each interior
// fan edge, mapping crossings back to 3D points on those edges.
func intersectFan(m *mesh.ValidatedMesh, v int, f *fan) ([]mesh.Vec3, bool) {
	center := m.Vertex(v)
	n := len(f.ring)

	radius := make([]float64, n)
	phi := make([]float64, n)
	for i, rv := range f.ring {
		radius[i] = m.Vertex(rv).Sub(center).Norm()
		if i > 0 {
			phi[i] = phi[i-1] + f.angles[i-1]
		}
	}

	a2 := mesh.Vec2{U: radius[0], V: 0}
	b2 := mesh.Vec2{U: radius[n-1] * math.Cos(phi[n-1]), V: radius[n-1] * math.Sin(phi[n-1])}

	var crossings []mesh.Vec3
	for i := 1; i < n-1; i++ {
		dir := mesh.Vec2{U: math.Cos(phi[i]), V: math.Sin(phi[i])}
		sa := dir.U*a2.V - dir.V*a2.U
		sb := dir.U*b2.V - dir.V*b2.U
		if sa == sb {
			return nil, false
		}
		s := sa / (sa - sb)
		c := mesh.Vec2{U: a2.U + s*(b2.U-a2.U), V: a2.V + s*(b2.V-a2.V)}
		t := c.U*dir.U + c.V*dir.V
		if t <= 0 || t > radius[i]*(1+1e-9) {
			// The straight segment leaves the fan; the shortcut is not
			// valid within this strip, keep the original vertex.
			return nil, false
		}
		edgeDir := m.Vertex(f.ring[i]).Sub(center)
		crossings = append(crossings, center.Add(edgeDir.Scale(t/radius[i])))
	}
	return crossings, true
}

func thirdVertex(tri mesh.Triangle, a, b int) int {
	for _, v := range tri {
		if v != a && v != b {
			return v
		}
	}
	return -1
}

func otherTriangle(m *mesh.ValidatedMesh, e mesh.Edge, not int) int {
	for _, t := range m.EdgeTriangles(e) {
		if t != not {
			return t
		}
	}
	return -1
}

func angleBetween(a, b mesh.Vec3) float64 {
	cos := a.Dot(b) / (a.Norm() * b.Norm())
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}
