package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/meshfab/unfold/internal/pipeline"
)

// ExportReport writes an xlsx workbook for an unfolding result: a Summary
// sheet with the pattern-level numbers and a Triangles sheet with the
// per-triangle distortion metrics.
func ExportReport(path string, res *pipeline.Result) error {
	if res.Distortion == nil {
		return fmt.Errorf("result carries no distortion report to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("cannot rename summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, summarySheet, res); err != nil {
		return err
	}

	const triSheet = "Triangles"
	if _, err := f.NewSheet(triSheet); err != nil {
		return fmt.Errorf("cannot add triangle sheet: %w", err)
	}
	if err := writeTriangleSheet(f, triSheet, res); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, sheet string, res *pipeline.Result) error {
	d := res.Distortion
	b := res.Manufacturing.MaterialBounds

	rows := [][2]interface{}{
		{"Pattern", res.PatternID},
		{"Solver", res.Diagnostics.Method},
		{"Iterations", res.Diagnostics.Iterations},
		{"Residual", res.Diagnostics.Residual},
		{"Condition estimate", res.Diagnostics.ConditionEstimate},
		{"Tolerance", d.Tolerance},
		{"Angle threshold (deg)", d.ThresholdDeg},
		{"Max angle distortion (deg)", d.MaxAngleDistortion},
		{"Mean angle distortion (deg)", d.MeanAngleDistortion},
		{"Area ratio min", d.AreaRatio.Min},
		{"Area ratio mean", d.AreaRatio.Mean},
		{"Area ratio max", d.AreaRatio.Max},
		{"Triangles over threshold (%)", d.ExceededPercent},
		{"Acceptable", d.Acceptable},
		{"Material width (mm)", b.Width},
		{"Material height (mm)", b.Height},
		{"Fold lines", len(res.Manufacturing.FoldLines)},
		{"Discarded vertices", res.DiscardedVertices},
		{"Discarded triangles", res.DiscardedTriangles},
	}

	for i, row := range rows {
		keyCell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cannot address summary row %d: %w", i+1, err)
		}
		valCell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return fmt.Errorf("cannot address summary row %d: %w", i+1, err)
		}
		if err := f.SetCellValue(sheet, keyCell, row[0]); err != nil {
			return fmt.Errorf("cannot write summary cell: %w", err)
		}
		if err := f.SetCellValue(sheet, valCell, row[1]); err != nil {
			return fmt.Errorf("cannot write summary cell: %w", err)
		}
	}

	return f.SetColWidth(sheet, "A", "A", 30)
}

func writeTriangleSheet(f *excelize.File, sheet string, res *pipeline.Result) error {
	headers := []interface{}{"Triangle", "Angle distortion (deg)", "Area ratio UV/3D", "Over threshold"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("cannot write triangle header: %w", err)
	}

	for i, tm := range res.Distortion.Triangles {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cannot address triangle row %d: %w", i+2, err)
		}
		row := []interface{}{
			tm.Triangle,
			tm.AngleDistortion,
			tm.AreaRatio,
			tm.AngleDistortion > res.Distortion.ThresholdDeg,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("cannot write triangle row %d: %w", i+2, err)
		}
	}

	return f.SetColWidth(sheet, "A", "D", 22)
}
