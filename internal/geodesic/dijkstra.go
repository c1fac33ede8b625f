package geodesic

import (
	"container/heap"
	"math"
	"sort"

	"github.com/meshfab/unfold/internal/mesh"
)

// pathEps is the relative slack used when comparing summed edge weights;
// floating-point addition order makes exact equality too strict.
const pathEps = 1e-9

// buildAdjacency derives sorted neighbor lists from the mesh triangles.
// Sorting makes every traversal below order-independent of map iteration.
func buildAdjacency(m *mesh.ValidatedMesh) [][]int {
	adj := make([][]int, m.NumVertices())
	seen := make(map[mesh.Edge]bool, m.NumTriangles()*3/2)
	for _, tri := range m.Triangles() {
		for i := 0; i < 3; i++ {
			e := mesh.MakeEdge(tri[i], tri[(i+1)%3])
			if seen[e] {
				continue
			}
			seen[e] = true
			adj[e.A] = append(adj[e.A], e.B)
			adj[e.B] = append(adj[e.B], e.A)
		}
	}
	for v := range adj {
		sort.Ints(adj[v])
	}
	return adj
}

// dijkstra computes shortest edge-graph distances from the given source set.
func dijkstra(m *mesh.ValidatedMesh, adj [][]int, sources []int) []float64 {
	dist := make([]float64, m.NumVertices())
	for i := range dist {
		dist[i] = math.Inf(1)
	}

	pq := &vertexQueue{}
	heap.Init(pq)
	for _, s := range sources {
		if dist[s] > 0 {
			dist[s] = 0
			heap.Push(pq, vertexDist{vertex: s, dist: 0})
		}
	}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(vertexDist)
		if cur.dist > dist[cur.vertex] {
			continue // stale entry
		}
		p := m.Vertex(cur.vertex)
		for _, w := range adj[cur.vertex] {
			d := cur.dist + p.Dist(m.Vertex(w))
			if d < dist[w] {
				dist[w] = d
				heap.Push(pq, vertexDist{vertex: w, dist: d})
			}
		}
	}
	return dist
}

// lexSmallestPath reconstructs the lexicographically smallest vertex
// sequence among all shortest source→target paths. A vertex lies on some
// shortest path iff distS[v] + distT[v] equals the total; walking from the
// source and always taking the smallest admissible neighbor yields the
// lexicographic minimum.
func lexSmallestPath(m *mesh.ValidatedMesh, adj [][]int, source, target int, distS, distT []float64) []int {
	total := distS[target]
	slack := pathEps * (1 + total)

	path := []int{source}
	cur := source
	for cur != target && len(path) <= m.NumVertices() {
		p := m.Vertex(cur)
		next := -1
		for _, w := range adj[cur] { // ascending vertex index
			d := p.Dist(m.Vertex(w))
			onShortest := math.Abs(distS[cur]+d-distS[w]) <= slack &&
				math.Abs(distS[w]+distT[w]-total) <= slack
			if onShortest && distS[w] > distS[cur] {
				next = w
				break
			}
		}
		if next < 0 {
			// Numerical slack failed to admit any neighbor; fall back to
			// the strict predecessor relation.
			for _, w := range adj[cur] {
				if distS[cur]+p.Dist(m.Vertex(w)) == distS[w] {
					next = w
					break
				}
			}
		}
		if next < 0 {
			break
		}
		path = append(path, next)
		cur = next
	}
	return path
}

// vertexDist is a priority-queue entry.
type vertexDist struct {
	vertex int
	dist   float64
}

// vertexQueue implements heap.Interface ordered by distance, then vertex
// index so equal-distance pops are deterministic.
type vertexQueue []vertexDist

func (q vertexQueue) Len() int { return len(q) }

func (q vertexQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].vertex < q[j].vertex
}

func (q vertexQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *vertexQueue) Push(x any) { *q = append(*q, x.(vertexDist)) }

func (q *vertexQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
