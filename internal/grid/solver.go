// Package grid implements the simple-grid unfolding method: a least-squares
// plane is fitted through the mesh vertices and the surface is projected
// onto it. It is an independent, cheaper alternative to the LSCM solver
// sharing the same validation and distortion contracts, adequate for nearly
// planar patches and useful as a baseline the distortion report can compare
// against.
package grid

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/solver"
)

// rankRatio is the eigenvalue ratio below which the vertex cloud is treated
// as collinear and the projection plane is undefined.
const rankRatio = 1e-12

// Solve projects the validated mesh onto its least-squares plane. The plane
// normal is the smallest-eigenvalue direction of the vertex covariance; the
// two remaining eigenvectors span the UV axes. Like the LSCM solver, the
// result is globally rescaled so total UV area matches total 3D area.
func Solve(ctx context.Context, m *mesh.ValidatedMesh, opts Options) (*solver.UVResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var contained []int
	for v := 0; v < m.NumVertices(); v++ {
		if m.Contains(v) {
			contained = append(contained, v)
		}
	}

	centroid := mesh.Vec3{}
	for _, v := range contained {
		centroid = centroid.Add(m.Vertex(v))
	}
	centroid = centroid.Scale(1 / float64(len(contained)))

	var cov [3][3]float64
	for _, v := range contained {
		d := m.Vertex(v).Sub(centroid)
		c := [3]float64{d.X, d.Y, d.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov[i][j] += c[i] * c[j]
			}
		}
	}

	sym := mat.NewSymDense(3, []float64{
		cov[0][0], cov[0][1], cov[0][2],
		cov[0][1], cov[1][1], cov[1][2],
		cov[0][2], cov[1][2], cov[2][2],
	})

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, &solver.SingularSystemError{Detail: "eigendecomposition of vertex covariance failed"}
	}

	// Eigenvalues come out ascending: [normal, minor axis, major axis].
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	if vals[2] <= 0 || vals[1]/vals[2] < rankRatio {
		return nil, &solver.SingularSystemError{Detail: "vertex cloud is rank deficient (collinear)"}
	}

	major := axis(&vecs, 2)
	minor := axis(&vecs, 1)

	uv := make([]mesh.Vec2, m.NumVertices())
	for _, v := range contained {
		d := m.Vertex(v).Sub(centroid)
		uv[v] = mesh.Vec2{U: d.Dot(major), V: d.Dot(minor)}
	}

	uvArea := 0.0
	for t := 0; t < m.NumTriangles(); t++ {
		tri := m.Triangle(t)
		uvArea += mesh.TriangleArea2D(uv[tri[0]], uv[tri[1]], uv[tri[2]])
	}
	if uvArea <= 1e-300 {
		return nil, &solver.SingularSystemError{Detail: "projection collapsed to zero UV area"}
	}
	scale := math.Sqrt(m.TotalArea() / uvArea)
	for i := range uv {
		uv[i] = uv[i].Scale(scale)
	}

	return &solver.UVResult{
		UV: uv,
		Diagnostics: solver.Diagnostics{
			Method:            "grid",
			ConditionEstimate: vals[2] / math.Max(vals[1], math.SmallestNonzeroFloat64),
		},
	}, nil
}

// Options exists for contract symmetry with the LSCM solver; the projection
// is direct and currently has nothing to tune.
type Options struct{}

// DefaultOptions returns the options used by the pipeline.
func DefaultOptions() Options { return Options{} }

func axis(vecs *mat.Dense, col int) mesh.Vec3 {
	return mesh.Vec3{
		X: vecs.At(0, col),
		Y: vecs.At(1, col),
		Z: vecs.At(2, col),
	}
}
