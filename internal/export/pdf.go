package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/meshfab/unfold/internal/pipeline"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a PDF document for an unfolding result: a pattern
// page with the scaled 2D drawing and fold lines, followed by a distortion
// report page.
func ExportPDF(path string, res *pipeline.Result) error {
	if res.Mesh == nil {
		return fmt.Errorf("result carries no mesh to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPatternPage(pdf, res)

	pdf.AddPage()
	renderReportPage(pdf, res)

	return pdf.OutputFileAndClose(path)
}

// renderPatternPage draws the unfolded pattern on the current page.
func renderPatternPage(pdf *fpdf.Fpdf, res *pipeline.Result) {
	b := res.Manufacturing.MaterialBounds

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Pattern %s (%.0f x %.0f mm stock)", res.PatternID, b.Width, b.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	verdict := "REJECTED"
	if res.Distortion.Acceptable {
		verdict = "ACCEPTED"
	}
	stats := fmt.Sprintf("Triangles: %d | Max angle distortion: %.4f deg | Area ratio: %.4f | %s",
		res.Mesh.NumTriangles(), res.Distortion.MaxAngleDistortion, res.Distortion.AreaRatio.Mean, verdict)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom

	scaleX := drawWidth / b.Width
	scaleY := drawHeight / b.Height
	scale := math.Min(scaleX, scaleY)

	offsetX := marginLeft + (drawWidth-b.Width*scale)/2
	offsetY := drawAreaTop

	// PDF y axis grows downward; flip V so the pattern reads as drawn.
	toPage := func(u, v float64) (float64, float64) {
		return offsetX + (u-b.MinU)*scale, offsetY + (b.MaxV-v)*scale
	}

	// Material bounds.
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, b.Width*scale, b.Height*scale, "D")

	// Pattern triangles.
	interior, boundary := splitEdges(res.Mesh)
	pdf.SetDrawColor(170, 170, 170)
	pdf.SetLineWidth(0.15)
	for _, e := range interior {
		x1, y1 := toPage(res.UV[e.A].U, res.UV[e.A].V)
		x2, y2 := toPage(res.UV[e.B].U, res.UV[e.B].V)
		pdf.Line(x1, y1, x2, y2)
	}

	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.4)
	for _, e := range boundary {
		x1, y1 := toPage(res.UV[e.A].U, res.UV[e.A].V)
		x2, y2 := toPage(res.UV[e.B].U, res.UV[e.B].V)
		pdf.Line(x1, y1, x2, y2)
	}

	// Fold lines in red.
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.3)
	for _, fold := range res.Manufacturing.FoldLines {
		pts := foldUV(res, fold)
		for i := 1; i < len(pts); i++ {
			x1, y1 := toPage(pts[i-1].U, pts[i-1].V)
			x2, y2 := toPage(pts[i].U, pts[i].V)
			pdf.Line(x1, y1, x2, y2)
		}
	}
}

// renderReportPage writes the distortion and diagnostics summary.
func renderReportPage(pdf *fpdf.Fpdf, res *pipeline.Result) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Distortion Report", "", 0, "L", false, 0, "")

	d := res.Distortion
	rows := [][2]string{
		{"Pattern", res.PatternID},
		{"Solver", res.Diagnostics.Method},
		{"Iterations", fmt.Sprintf("%d", res.Diagnostics.Iterations)},
		{"Condition estimate", fmt.Sprintf("%.3g", res.Diagnostics.ConditionEstimate)},
		{"Tolerance", fmt.Sprintf("%.4g", d.Tolerance)},
		{"Angle threshold", fmt.Sprintf("%.4g deg", d.ThresholdDeg)},
		{"Max angle distortion", fmt.Sprintf("%.6f deg", d.MaxAngleDistortion)},
		{"Mean angle distortion", fmt.Sprintf("%.6f deg", d.MeanAngleDistortion)},
		{"Area ratio (min/mean/max)", fmt.Sprintf("%.4f / %.4f / %.4f", d.AreaRatio.Min, d.AreaRatio.Mean, d.AreaRatio.Max)},
		{"Triangles over threshold", fmt.Sprintf("%.1f%%", d.ExceededPercent)},
		{"Acceptable", fmt.Sprintf("%v", d.Acceptable)},
	}
	if res.DiscardedTriangles > 0 {
		rows = append(rows, [2]string{
			"Discarded (largest-component policy)",
			fmt.Sprintf("%d vertices, %d triangles", res.DiscardedVertices, res.DiscardedTriangles),
		})
	}

	y := drawAreaTop
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(70, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft+70, y)
		pdf.CellFormat(120, 6, row[1], "", 0, "L", false, 0, "")
		y += 6
	}
}
