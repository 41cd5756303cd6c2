package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/TrayForge/internal/generate"
)

const (
	referenceSheet = "References"
	boxSheet       = "Boxes"
)

// ExportReferenceXLSX writes the reference-label feed of every box to a
// workbook: one row per stack on the References sheet and one row per tray
// on the Boxes sheet.
func ExportReferenceXLSX(path string, results []*generate.BoxResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no boxes to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), referenceSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(boxSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return err
	}

	refRows := [][]interface{}{{"Box", "Tray", "Ref", "Label", "Shape", "Count", "Loading", "X (mm)", "Y (mm)"}}
	boxRows := [][]interface{}{{"Box", "Tray", "Letter", "X (mm)", "Y (mm)", "Width (mm)", "Depth (mm)", "Natural height (mm)", "Spacer (mm)"}}
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, l := range res.RefLabels {
			refRows = append(refRows, []interface{}{
				res.Box.Name, l.TrayName, l.RefCode, l.Label, l.Shape, l.Count, string(l.Loading),
				round2(l.Position.X), round2(l.Position.Y),
			})
		}
		for _, tr := range res.Trays {
			p := tr.Placement
			boxRows = append(boxRows, []interface{}{
				res.Box.Name, tr.Tray.Name, tr.Letter,
				round2(p.X), round2(p.Y), round2(p.Width), round2(p.Depth),
				round2(tr.Spacer.NaturalHeight), round2(tr.Spacer.Spacer),
			})
		}
	}

	if err := writeRows(f, referenceSheet, refRows, header); err != nil {
		return err
	}
	if err := writeRows(f, boxSheet, boxRows, header); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(rows[0]))
	return f.SetColWidth(sheet, "A", lastCol, 14)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
