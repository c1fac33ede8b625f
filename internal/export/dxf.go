// Package export writes unfolding results to manufacturing hand-off
// formats: DXF pattern drawings, PDF reports, QR-coded pattern labels, xlsx
// metric workbooks, and distortion histograms.
package export

import (
	"fmt"

	"github.com/yofu/dxf"
	dxfcolor "github.com/yofu/dxf/color"

	"github.com/meshfab/unfold/internal/geodesic"
	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/pipeline"
)

// DXF layer names. The CAD side keys on these to style the pattern.
const (
	layerPattern = "PATTERN"
	layerOutline = "OUTLINE"
	layerFolds   = "FOLDS"
)

// ExportDXF writes the unfolded pattern as a 2D DXF drawing: interior
// triangle edges on PATTERN, the boundary outline on OUTLINE, and fold
// lines on FOLDS. Coordinates are the UV coordinates in source-mesh units.
func ExportDXF(path string, res *pipeline.Result) error {
	if res.Mesh == nil {
		return fmt.Errorf("result carries no mesh to export")
	}
	m := res.Mesh

	d := dxf.NewDrawing()

	if _, err := d.AddLayer(layerPattern, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("cannot add layer %s: %w", layerPattern, err)
	}
	interior, boundary := splitEdges(m)
	for _, e := range interior {
		a, b := res.UV[e.A], res.UV[e.B]
		if _, err := d.Line(a.U, a.V, 0, b.U, b.V, 0); err != nil {
			return fmt.Errorf("cannot write pattern edge: %w", err)
		}
	}

	if _, err := d.AddLayer(layerOutline, dxfcolor.White, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("cannot add layer %s: %w", layerOutline, err)
	}
	for _, e := range boundary {
		a, b := res.UV[e.A], res.UV[e.B]
		if _, err := d.Line(a.U, a.V, 0, b.U, b.V, 0); err != nil {
			return fmt.Errorf("cannot write outline edge: %w", err)
		}
	}

	if len(res.Manufacturing.FoldLines) > 0 {
		if _, err := d.AddLayer(layerFolds, dxfcolor.Red, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("cannot add layer %s: %w", layerFolds, err)
		}
		for _, fold := range res.Manufacturing.FoldLines {
			pts := foldUV(res, fold)
			for i := 1; i < len(pts); i++ {
				if _, err := d.Line(pts[i-1].U, pts[i-1].V, 0, pts[i].U, pts[i].V, 0); err != nil {
					return fmt.Errorf("cannot write fold line: %w", err)
				}
			}
		}
	}

	return d.SaveAs(path)
}

// splitEdges partitions mesh edges into interior and boundary sets, in a
// deterministic order (by triangle, then edge slot).
func splitEdges(m *mesh.ValidatedMesh) (interior, boundary []mesh.Edge) {
	seen := make(map[mesh.Edge]bool)
	for _, tri := range m.Triangles() {
		for i := 0; i < 3; i++ {
			e := mesh.MakeEdge(tri[i], tri[(i+1)%3])
			if seen[e] {
				continue
			}
			seen[e] = true
			if m.IsBoundaryEdge(e) {
				boundary = append(boundary, e)
			} else {
				interior = append(interior, e)
			}
		}
	}
	return interior, boundary
}

// foldUV maps a fold line into pattern space via the UV positions of its
// edge-graph vertices. Straightening detail points live on the 3D surface
// and have no direct UV image, so the vertex polyline is used.
func foldUV(res *pipeline.Result, fold geodesic.Path) []mesh.Vec2 {
	pts := make([]mesh.Vec2, len(fold.Vertices))
	for i, v := range fold.Vertices {
		pts[i] = res.UV[v]
	}
	return pts
}
