package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/meshfab/unfold/internal/pipeline"
)

// LabelInfo holds the data encoded into a pattern label's QR code.
type LabelInfo struct {
	PatternID  string  `json:"pattern_id"`
	Width      float64 `json:"width_mm"`
	Height     float64 `json:"height_mm"`
	Triangles  int     `json:"triangles"`
	MaxDistort float64 `json:"max_angle_distortion_deg"`
	Acceptable bool    `json:"acceptable"`
	FoldLines  int     `json:"fold_lines"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows
// per page). Each label cell is approximately 66.7mm x 25.4mm on US Letter.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels for the given patterns,
// one label per pattern, laid out on a standard label sheet. Scanning the
// code at the bench recovers the pattern metadata as JSON.
func ExportLabels(path string, results []*pipeline.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no patterns to generate labels for")
	}

	labels := CollectLabelInfos(results)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.PatternID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single pattern label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide.
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s", info.PatternID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, "Pattern "+info.PatternID, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.0f x %.0f mm stock", info.Width, info.Height)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	detail := fmt.Sprintf("%d tris, %d folds, max %.3f deg", info.Triangles, info.FoldLines, info.MaxDistort)
	pdf.CellFormat(textW, 3, detail, "", 1, "L", false, 0, "")

	if !info.Acceptable {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(textW, 3, "OVER TOLERANCE", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectLabelInfos extracts label information from unfolding results for
// use in testing or alternative export formats.
func CollectLabelInfos(results []*pipeline.Result) []LabelInfo {
	labels := make([]LabelInfo, 0, len(results))
	for _, res := range results {
		b := res.Manufacturing.MaterialBounds
		info := LabelInfo{
			PatternID: res.PatternID,
			Width:     b.Width,
			Height:    b.Height,
			FoldLines: len(res.Manufacturing.FoldLines),
		}
		if res.Mesh != nil {
			info.Triangles = res.Mesh.NumTriangles()
		}
		if res.Distortion != nil {
			info.MaxDistort = res.Distortion.MaxAngleDistortion
			info.Acceptable = res.Distortion.Acceptable
		}
		labels = append(labels, info)
	}
	return labels
}
