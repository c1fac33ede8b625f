package mesh

// ComponentPolicy controls how Validate treats a mesh that splits into more
// than one connected component.
type ComponentPolicy string

const (
	// PolicyStrict rejects disconnected meshes.
	PolicyStrict ComponentPolicy = "strict"
	// PolicyLargest keeps only the largest component (by triangle count)
	// and reports the discarded vertex/triangle counts on the result.
	PolicyLargest ComponentPolicy = "largest"
)

// degenerateArea is the area floor below which a triangle is considered
// degenerate. Model units are mm, so this is far below manufacturing
// resolution.
const degenerateArea = 1e-12

// Validate checks raw mesh buffers and derives adjacency, producing the
// immutable ValidatedMesh consumed by the solvers and the pathfinder.
// Checks run in order: input well-formedness and index bounds, degenerate
// triangles, manifoldness, connectivity. Validate is a pure function of its
// inputs; the input slices are copied, never retained.
func Validate(vertices [][3]float64, triangles [][3]int, policy ComponentPolicy) (*ValidatedMesh, error) {
	if len(vertices) < 3 {
		return nil, &InputError{Triangle: -1, Vertex: -1, Msg: "mesh needs at least 3 vertices"}
	}
	if len(triangles) == 0 {
		return nil, &InputError{Triangle: -1, Vertex: -1, Msg: "mesh has no triangles"}
	}

	verts := make([]Vec3, len(vertices))
	for i, v := range vertices {
		verts[i] = Vec3{X: v[0], Y: v[1], Z: v[2]}
	}

	tris := make([]Triangle, len(triangles))
	for t, tri := range triangles {
		for _, v := range tri {
			if v < 0 || v >= len(verts) {
				return nil, &InputError{Triangle: t, Vertex: v}
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			return nil, &DegenerateGeometryError{Triangle: t, Area: 0}
		}
		tris[t] = Triangle{tri[0], tri[1], tri[2]}
	}

	for t, tri := range tris {
		area := TriangleArea3D(verts[tri[0]], verts[tri[1]], verts[tri[2]])
		if area <= degenerateArea {
			return nil, &DegenerateGeometryError{Triangle: t, Area: area}
		}
	}

	edgeTris := buildEdgeMap(tris)
	for e, inc := range edgeTris {
		if len(inc) > 2 {
			return nil, &NonManifoldError{Edge: e, Incidence: len(inc)}
		}
	}

	comp, nComponents := triangleComponents(tris, edgeTris)

	discardedTris := 0
	discardedVerts := 0
	if nComponents > 1 {
		if policy != PolicyLargest {
			return nil, &DisconnectedMeshError{Components: nComponents}
		}
		keep := largestComponent(comp, nComponents)

		referenced := make([]bool, len(verts))
		kept := tris[:0]
		for t, tri := range tris {
			if comp[t] != keep {
				discardedTris++
				continue
			}
			kept = append(kept, tri)
			referenced[tri[0]] = true
			referenced[tri[1]] = true
			referenced[tri[2]] = true
		}
		tris = kept

		// Vertex slots stay put so caller-side indices remain valid;
		// count how many ended up orphaned.
		seen := make(map[int]bool)
		for _, tri := range triangles {
			for _, v := range tri {
				seen[v] = true
			}
		}
		for v := range seen {
			if !referenced[v] {
				discardedVerts++
			}
		}

		edgeTris = buildEdgeMap(tris)
	}

	m := &ValidatedMesh{
		vertices:           verts,
		triangles:          tris,
		edgeTris:           edgeTris,
		discardedVertices:  discardedVerts,
		discardedTriangles: discardedTris,
	}

	m.boundary = make(map[Edge]bool)
	for e, inc := range edgeTris {
		if len(inc) == 1 {
			m.boundary[e] = true
		}
	}

	m.vertexTris = make([][]int, len(verts))
	m.areas = make([]float64, len(tris))
	for t, tri := range tris {
		m.areas[t] = TriangleArea3D(verts[tri[0]], verts[tri[1]], verts[tri[2]])
		for _, v := range tri {
			m.vertexTris[v] = append(m.vertexTris[v], t)
		}
	}

	m.normals = make([]Vec3, len(verts))
	for _, tri := range tris {
		a, b, c := verts[tri[0]], verts[tri[1]], verts[tri[2]]
		// Cross product magnitude is twice the area, giving the
		// area weighting for free.
		n := b.Sub(a).Cross(c.Sub(a))
		for _, v := range tri {
			m.normals[v] = m.normals[v].Add(n)
		}
	}
	for v := range m.normals {
		m.normals[v] = m.normals[v].Normalize()
	}

	return m, nil
}

// buildEdgeMap maps each undirected edge to the triangles incident to it.
func buildEdgeMap(tris []Triangle) map[Edge][]int {
	edgeTris := make(map[Edge][]int, len(tris)*3/2)
	for t, tri := range tris {
		for i := 0; i < 3; i++ {
			e := MakeEdge(tri[i], tri[(i+1)%3])
			edgeTris[e] = append(edgeTris[e], t)
		}
	}
	return edgeTris
}

// triangleComponents labels each triangle with its connected component via
// union-find over shared edges, and returns the component count.
func triangleComponents(tris []Triangle, edgeTris map[Edge][]int) ([]int, int) {
	parent := make([]int, len(tris))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]] // path halving
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, inc := range edgeTris {
		for i := 1; i < len(inc); i++ {
			union(inc[0], inc[i])
		}
	}

	comp := make([]int, len(tris))
	label := make(map[int]int)
	for t := range tris {
		root := find(t)
		id, ok := label[root]
		if !ok {
			id = len(label)
			label[root] = id
		}
		comp[t] = id
	}
	return comp, len(label)
}

// largestComponent returns the component id with the most triangles,
// breaking ties toward the lower id for determinism.
func largestComponent(comp []int, n int) int {
	counts := make([]int, n)
	for _, c := range comp {
		counts[c]++
	}
	best := 0
	for c := 1; c < n; c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
