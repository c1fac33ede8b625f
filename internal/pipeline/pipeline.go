// Package pipeline wires the unfolding core end to end: validation, solver
// selection, distortion analysis, fold-line computation, and the
// manufacturing data consumed by the caller's CAD/CAM side. Every call is a
// pure function of its inputs, so independent meshes can be processed
// concurrently (see Batch).
package pipeline

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/meshfab/unfold/internal/distortion"
	"github.com/meshfab/unfold/internal/geodesic"
	"github.com/meshfab/unfold/internal/grid"
	"github.com/meshfab/unfold/internal/lscm"
	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/solver"
)

// Method selects the unfolding solver.
type Method string

const (
	MethodLSCM Method = "lscm" // least-squares conformal mapping (default)
	MethodGrid Method = "grid" // plane projection, for nearly planar patches
)

// Settings holds pipeline configuration.
type Settings struct {
	Method          Method               `json:"method"`
	ComponentPolicy mesh.ComponentPolicy `json:"component_policy"`
	// Tolerance is the relative distortion target the acceptability gate
	// derives its threshold from. 0.001 matches the manufacturing target
	// of <0.1% deviation.
	Tolerance      float64 `json:"tolerance"`
	Straighten     bool    `json:"straighten_folds"`
	MaxIterations  int     `json:"max_iterations"`  // 0 = solver default
	MaterialMargin float64 `json:"material_margin"` // mm added around the pattern bounds
}

// DefaultSettings returns the settings used when the caller supplies none.
func DefaultSettings() Settings {
	return Settings{
		Method:          MethodLSCM,
		ComponentPolicy: mesh.PolicyStrict,
		Tolerance:       0.001,
		Straighten:      true,
		MaterialMargin:  10,
	}
}

// FoldSpec names a fold line by its endpoint vertices; the pipeline places
// it along the surface geodesic between them.
type FoldSpec struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// MaterialBounds is the axis-aligned UV extent of the pattern plus the
// configured margin, i.e. the minimum stock size to cut it from.
type MaterialBounds struct {
	MinU   float64 `json:"min_u"`
	MinV   float64 `json:"min_v"`
	MaxU   float64 `json:"max_u"`
	MaxV   float64 `json:"max_v"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Manufacturing groups the data handed to the excluded CAD-integration
// layer for writing back as 2D drawing geometry.
type Manufacturing struct {
	MaterialBounds MaterialBounds  `json:"recommended_material_bounds"`
	FoldLines      []geodesic.Path `json:"fold_lines"`
}

// Result is the full output of one unfolding run. Mesh is the validated
// mesh the pattern was computed from, carried for exporters; it is not part
// of the serialized contract.
type Result struct {
	Mesh *mesh.ValidatedMesh `json:"-"`

	PatternID          string             `json:"pattern_id"`
	UV                 []mesh.Vec2        `json:"uv_coordinates"`
	Distortion         *distortion.Report `json:"distortion_metrics"`
	Manufacturing      Manufacturing      `json:"manufacturing_data"`
	Diagnostics        solver.Diagnostics `json:"solver_diagnostics"`
	DiscardedVertices  int                `json:"discarded_vertices,omitempty"`
	DiscardedTriangles int                `json:"discarded_triangles,omitempty"`
}

// Unfolder runs the unfolding pipeline with fixed settings.
type Unfolder struct {
	Settings Settings
}

// New returns an Unfolder. Method, ComponentPolicy, and Tolerance fall back
// to their DefaultSettings values when left zero; the remaining fields are
// taken as given, since false and 0 are valid choices for them.
func New(settings Settings) *Unfolder {
	def := DefaultSettings()
	if settings.Method == "" {
		settings.Method = def.Method
	}
	if settings.ComponentPolicy == "" {
		settings.ComponentPolicy = def.ComponentPolicy
	}
	if settings.Tolerance == 0 {
		settings.Tolerance = def.Tolerance
	}
	return &Unfolder{Settings: settings}
}

// Unfold validates the raw mesh, solves for UV coordinates, analyzes
// distortion, and computes the requested fold lines. Validation and solver
// failures are fatal; a distorted-but-solvable result comes back with
// Distortion.Acceptable == false and no error.
func (u *Unfolder) Unfold(ctx context.Context, vertices [][3]float64, triangles [][3]int, pins []solver.Constraint, folds []FoldSpec) (*Result, error) {
	m, err := mesh.Validate(vertices, triangles, u.Settings.ComponentPolicy)
	if err != nil {
		return nil, err
	}

	var uvRes *solver.UVResult
	switch u.Settings.Method {
	case MethodGrid:
		uvRes, err = grid.Solve(ctx, m, grid.DefaultOptions())
	default:
		uvRes, err = lscm.Solve(ctx, m, pins, lscm.Options{MaxIterations: u.Settings.MaxIterations})
	}
	if err != nil {
		return nil, err
	}

	report := distortion.Analyze(m, uvRes, u.Settings.Tolerance)

	foldLines := make([]geodesic.Path, 0, len(folds))
	for _, f := range folds {
		p, err := geodesic.ComputePath(m, f.Source, f.Target, u.Settings.Straighten)
		if err != nil {
			return nil, err
		}
		foldLines = append(foldLines, *p)
	}

	dv, dt := m.Discarded()
	return &Result{
		Mesh:       m,
		PatternID:  uuid.New().String()[:8],
		UV:         uvRes.UV,
		Distortion: report,
		Manufacturing: Manufacturing{
			MaterialBounds: materialBounds(m, uvRes.UV, u.Settings.MaterialMargin),
			FoldLines:      foldLines,
		},
		Diagnostics:        uvRes.Diagnostics,
		DiscardedVertices:  dv,
		DiscardedTriangles: dt,
	}, nil
}

// materialBounds computes the UV bounding box over retained vertices only,
// expanded by the margin on all sides.
func materialBounds(m *mesh.ValidatedMesh, uv []mesh.Vec2, margin float64) MaterialBounds {
	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)
	for v := 0; v < m.NumVertices(); v++ {
		if !m.Contains(v) {
			continue
		}
		c := uv[v]
		minU = math.Min(minU, c.U)
		minV = math.Min(minV, c.V)
		maxU = math.Max(maxU, c.U)
		maxV = math.Max(maxV, c.V)
	}
	b := MaterialBounds{
		MinU: minU - margin,
		MinV: minV - margin,
		MaxU: maxU + margin,
		MaxV: maxV + margin,
	}
	b.Width = b.MaxU - b.MinU
	b.Height = b.MaxV - b.MinV
	return b
}
