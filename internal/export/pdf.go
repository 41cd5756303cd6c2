// Package export writes generated boxes to documents: a PDF reference
// sheet, QR-coded tray labels, an XLSX reference workbook and STL files.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/TrayForge/internal/engine"
	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/mesh"
	"github.com/piwi3910/TrayForge/internal/model"
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
	tableWidth   = 110.0 // right-hand reference table
)

// SheetOptions controls the reference sheet.
type SheetOptions struct {
	// Config supplies the filament figures for the print estimate page.
	Config model.AppConfig
	// InfillPercent is applied to the estimate; 0 means 20.
	InfillPercent float64
}

// ExportReferenceSheet writes one page per box with a top-down diagram of
// its trays and pockets labelled by reference code, the reference table,
// and a final summary page. Boxes generated without solids get no print
// estimate.
func ExportReferenceSheet(path string, results []*generate.BoxResult, opts SheetOptions) error {
	if len(results) == 0 {
		return fmt.Errorf("no boxes to export")
	}
	if opts.InfillPercent == 0 {
		opts.InfillPercent = 20
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, res := range results {
		if res == nil || res.Arrangement == nil {
			return fmt.Errorf("box has no arrangement to export")
		}
		pdf.AddPage()
		renderBoxPage(pdf, res)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, results, opts)

	return pdf.OutputFileAndClose(path)
}

// renderBoxPage draws a single box on the current page.
func renderBoxPage(pdf *fpdf.Fpdf, res *generate.BoxResult) {
	arr := res.Arrangement

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%.1f x %.1f x %.1f mm)", res.Box.Name, arr.ExteriorWidth, arr.ExteriorDepth, arr.ExteriorHeight)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Trays: %d | Stacks: %d | Tray height: %.1f mm | Fill: %s",
		len(res.Trays), len(res.RefLabels), arr.TrayHeight, res.Box.Fill)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight - tableWidth - 10
	drawHeight := pageHeight - drawAreaTop - marginBottom - 10
	if arr.ExteriorWidth <= 0 || arr.ExteriorDepth <= 0 {
		pdf.SetXY(marginLeft, drawAreaTop)
		pdf.CellFormat(drawWidth, 6, "Empty box", "", 0, "L", false, 0, "")
		return
	}

	scale := math.Min(drawWidth/arr.ExteriorWidth, drawHeight/arr.ExteriorDepth)
	canvasW := arr.ExteriorWidth * scale
	canvasH := arr.ExteriorDepth * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Box walls, then the interior.
	pdf.SetFillColor(190, 190, 190)
	pdf.SetDrawColor(80, 80, 80)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")
	wall := res.Box.WallThickness * scale
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(offsetX+wall, offsetY+wall, canvasW-2*wall, canvasH-2*wall, "F")

	if res.Box.Fill == model.FillSolid {
		pdf.SetFillColor(215, 215, 215)
		for _, r := range arr.FillRegions {
			pdf.Rect(offsetX+r.X*scale, offsetY+r.Y*scale, r.W*scale, r.D*scale, "F")
		}
	}

	for _, tr := range res.Trays {
		drawTray(pdf, tr, scale, offsetX, offsetY)
	}

	drawDimensionAnnotations(pdf, arr, scale, offsetX, offsetY, canvasW, canvasH)
	drawReferenceTable(pdf, res.RefLabels, pageWidth-marginRight-tableWidth, drawAreaTop)
}

// drawTray fills a tray placement with its colour and outlines its pocket
// slots, each marked with its reference code.
func drawTray(pdf *fpdf.Fpdf, tr generate.TrayResult, scale, offsetX, offsetY float64) {
	p := tr.Placement
	col := model.ParseHex(tr.Tray.Color)
	px := offsetX + p.X*scale
	py := offsetY + p.Y*scale

	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	pdf.Rect(px, py, p.Width*scale, p.Depth*scale, "FD")

	pdf.SetFillColor(255, 255, 255)
	pdf.SetLineWidth(0.2)
	for _, pk := range tr.Layout.Pockets {
		sx := px + pk.Slot.X*scale
		sy := py + pk.Slot.Y*scale
		sw := pk.Slot.W * scale
		sd := pk.Slot.D * scale
		pdf.Rect(sx, sy, sw, sd, "FD")

		code := engine.RefCode(tr.Letter, pk.Seq)
		pdf.SetFont("Helvetica", "B", labelFontSize(sw, sd))
		pdf.SetTextColor(0, 0, 0)
		cw := pdf.GetStringWidth(code)
		if cw < sw-1 {
			pdf.SetXY(sx+(sw-cw)/2, sy+sd/2-2)
			pdf.CellFormat(cw, 4, code, "", 0, "C", false, 0, "")
		}
	}

	if w := p.Width * scale; w > 20 {
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(40, 40, 40)
		name := fmt.Sprintf("%s: %s", tr.Letter, tr.Tray.Name)
		if pdf.GetStringWidth(name) < w-2 {
			pdf.SetXY(px+1, py+p.Depth*scale-3.5)
			pdf.CellFormat(w-2, 3, name, "", 0, "L", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// drawDimensionAnnotations adds width and depth labels outside the box outline.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, arr *engine.Arrangement, scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f mm", arr.ExteriorWidth)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	depthLabel := fmt.Sprintf("%.1f mm", arr.ExteriorDepth)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	dLabelW := pdf.GetStringWidth(depthLabel)
	pdf.SetXY(offsetX-3-dLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(dLabelW, 4, depthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawReferenceTable lists every stack of the box in reference order.
func drawReferenceTable(pdf *fpdf.Fpdf, labels []engine.RefLabel, x, y float64) {
	colWidths := []float64{14, 40, 30, 12, 14}
	headers := []string{"Ref", "Label", "Shape", "Qty", "Load"}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	xPos := x
	for i, h := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 5, h, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 5

	pdf.SetFont("Helvetica", "", 7)
	maxY := pageHeight - marginBottom - 5
	for i, l := range labels {
		if y > maxY {
			pdf.SetXY(x, y)
			pdf.CellFormat(tableWidth, 4, fmt.Sprintf("... %d more", len(labels)-i), "", 0, "L", false, 0, "")
			break
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		row := []string{l.RefCode, l.Label, l.Shape, fmt.Sprintf("%d", l.Count), string(l.Loading)}
		xPos = x
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 4.5, truncate(pdf, cell, colWidths[j]-1), "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 4.5
	}
}

// renderSummaryPage lists every box with its size and, when solids were
// built, the filament estimate of its parts.
func renderSummaryPage(pdf *fpdf.Fpdf, results []*generate.BoxResult, opts SheetOptions) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Print Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	colWidths := []float64{60, 60, 25, 40, 40, 40}
	headers := []string{"Box", "Exterior", "Trays", "Filament (m)", "Weight (g)", "Cost"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, h := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, h, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	var total model.PrintEstimate
	var warnings []string
	pdf.SetFont("Helvetica", "", 9)
	for i, res := range results {
		arr := res.Arrangement
		row := []string{
			res.Box.Name,
			fmt.Sprintf("%.1f x %.1f x %.1f mm", arr.ExteriorWidth, arr.ExteriorDepth, arr.ExteriorHeight),
			fmt.Sprintf("%d", len(res.Trays)),
			"-", "-", "-",
		}
		if est, ok := EstimateBox(res, opts.Config, opts.InfillPercent); ok {
			row[3] = fmt.Sprintf("%.1f", est.FilamentLength)
			row[4] = fmt.Sprintf("%.0f", est.FilamentGrams)
			row[5] = fmt.Sprintf("%.2f", est.EstimatedCost)
			total.FilamentLength += est.FilamentLength
			total.FilamentGrams += est.FilamentGrams
			total.EstimatedCost += est.EstimatedCost
		}
		for _, w := range res.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", res.Box.Name, w))
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	y += 4
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 6, fmt.Sprintf("Total: %.1f m, %.0f g, %.2f (at %.0f%% infill)",
		total.FilamentLength, total.FilamentGrams, total.EstimatedCost, opts.InfillPercent), "", 0, "L", false, 0, "")
	y += 8

	if len(warnings) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "Warnings", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, w := range warnings {
			if y > pageHeight-marginBottom-8 {
				break
			}
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(250, 5, "- "+w, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by TrayForge", "", 0, "C", false, 0, "")
}

// EstimateBox sums the volume of every tray, the box and the lid of a
// generated result and converts it into filament. It reports false when
// the result carries no solids.
func EstimateBox(res *generate.BoxResult, cfg model.AppConfig, infillPercent float64) (model.PrintEstimate, bool) {
	if res.BoxMesh == nil {
		return model.PrintEstimate{}, false
	}
	volume := mesh.Analyze(res.BoxMesh).Volume
	if res.LidMesh != nil {
		volume += mesh.Analyze(res.LidMesh).Volume
	}
	for _, tr := range res.Trays {
		if tr.Mesh != nil {
			volume += mesh.Analyze(tr.Mesh).Volume
		}
	}
	return model.CalculatePrintEstimate(math.Abs(volume), cfg.FilamentDiameter, cfg.FilamentDensity, cfg.FilamentPrice, infillPercent), true
}

// labelFontSize returns a font size that fits a rectangle of the given size.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 20:
		return 8
	case minDim > 10:
		return 7
	default:
		return 5
	}
}

func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
