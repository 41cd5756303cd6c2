package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/TrayForge/internal/engine"
	"github.com/piwi3910/TrayForge/internal/generate"
)

// TrayLabel holds the data encoded into each tray label's QR code.
type TrayLabel struct {
	Box      string   `json:"box"`
	Tray     string   `json:"tray"`
	Letter   string   `json:"letter"`
	Width    float64  `json:"width_mm"`
	Depth    float64  `json:"depth_mm"`
	Height   float64  `json:"height_mm"`
	Spacer   float64  `json:"spacer_mm"`
	RefCodes []string `json:"refs"`
	Contents []string `json:"contents"` // "<ref> <label> x<count>" per stack
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectTrayLabels builds one label per tray across all results, in box
// then tray order.
func CollectTrayLabels(results []*generate.BoxResult) []TrayLabel {
	var labels []TrayLabel
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, tr := range res.Trays {
			l := TrayLabel{
				Box:    res.Box.Name,
				Tray:   tr.Tray.Name,
				Letter: tr.Letter,
				Width:  tr.Placement.Width,
				Depth:  tr.Placement.Depth,
				Height: tr.Placement.Height + tr.Spacer.Spacer,
				Spacer: tr.Spacer.Spacer,
			}
			for _, ref := range engine.RefLabels(tr.Tray.Name, tr.Letter, tr.Layout) {
				l.RefCodes = append(l.RefCodes, ref.RefCode)
				desc := ref.Label
				if desc == "" {
					desc = ref.Shape
				}
				l.Contents = append(l.Contents, fmt.Sprintf("%s %s x%d", ref.RefCode, desc, ref.Count))
			}
			labels = append(labels, l)
		}
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded labels, one per tray, laid out
// on a standard label sheet (Avery 5160, 3 columns x 10 rows on US Letter).
func ExportLabels(path string, results []*generate.BoxResult) error {
	labels := CollectTrayLabels(results)
	if len(labels) == 0 {
		return fmt.Errorf("no trays to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Tray, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, index int, info TrayLabel) error {
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

	imgName := fmt.Sprintf("qr_%d_%s", index, info.Letter)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.Letter+" "+info.Tray, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.0f x %.0f x %.0f mm", info.Width, info.Depth, info.Height)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, truncate(pdf, info.Box, textW), "", 1, "L", false, 0, "")

	if len(info.RefCodes) > 0 {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.CellFormat(textW, 3, truncate(pdf, strings.Join(info.RefCodes, " "), textW), "", 0, "L", false, 0, "")
	}
	if info.Spacer > 0 {
		pdf.SetXY(textX, y+labelPadding+16)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, fmt.Sprintf("Spacer %.1f mm", info.Spacer), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
