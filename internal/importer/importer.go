// Package importer reads stack lists from CSV and Excel files and custom
// shape outlines from DXF drawings. CSV delimiters are detected
// automatically and header names are matched case-insensitively against a
// list of aliases.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/TrayForge/internal/model"
)

// TrayStacks groups imported stacks by the tray they were listed under.
// Name is empty when the file has no tray column.
type TrayStacks struct {
	Name       string
	TopLoaded  []model.StackSpec
	EdgeLoaded []model.StackSpec
}

// Count returns the number of stacks in the group.
func (t TrayStacks) Count() int {
	return len(t.TopLoaded) + len(t.EdgeLoaded)
}

// ImportResult holds the outcome of a stack import. Rows with errors are
// skipped; the rest are kept.
type ImportResult struct {
	Trays    []TrayStacks
	Errors   []string
	Warnings []string
}

// StackCount returns the number of stacks imported across all trays.
func (r ImportResult) StackCount() int {
	n := 0
	for _, t := range r.Trays {
		n += t.Count()
	}
	return n
}

// ColumnMapping maps column roles to their indices; -1 means absent.
type ColumnMapping struct {
	Label       int
	Shape       int
	Count       int
	Loading     int
	Orientation int
	Tray        int
}

var headerAliases = map[string][]string{
	"label":       {"label", "name", "description", "desc", "component", "item"},
	"shape":       {"shape", "type", "kind", "piece", "token"},
	"count":       {"count", "quantity", "qty", "num", "amount", "pcs", "pieces"},
	"loading":     {"loading", "load", "mode", "access"},
	"orientation": {"orientation", "orient", "direction", "axis"},
	"tray":        {"tray", "tray name", "group", "insert"},
}

var shapeAliases = map[string]model.ShapeRef{
	"square":   "square",
	"sq":       "square",
	"rect":     "square",
	"hex":      "hex",
	"hexagon":  "hex",
	"circle":   "circle",
	"round":    "circle",
	"disc":     "circle",
	"coin":     "circle",
	"triangle": "triangle",
	"tri":      "triangle",
}

// DetectCSVDelimiter picks the delimiter (comma, semicolon, tab or pipe)
// that splits the most rows into the same number of columns as the first.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		r := csv.NewReader(bytes.NewReader(data))
		r.Comma = delim
		r.LazyQuotes = true
		r.FieldsPerRecord = -1

		records, err := r.ReadAll()
		if err != nil || len(records) == 0 {
			continue
		}
		cols := len(records[0])
		if cols < 2 {
			continue
		}
		consistent := 0
		for _, row := range records {
			if len(row) == cols {
				consistent++
			}
		}
		if score := consistent*10 + cols; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// DetectColumns maps a header row to column roles. When no cell matches a
// known alias it returns the positional mapping Label, Shape, Count,
// Loading, Orientation, Tray and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{Label: -1, Shape: -1, Count: -1, Loading: -1, Orientation: -1, Tray: -1}
	slots := map[string]*int{
		"label": &m.Label, "shape": &m.Shape, "count": &m.Count,
		"loading": &m.Loading, "orientation": &m.Orientation, "tray": &m.Tray,
	}

	found := false
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if name == alias && *slots[role] == -1 {
					*slots[role] = i
					found = true
				}
			}
		}
	}
	if !found {
		return ColumnMapping{Label: 0, Shape: 1, Count: 2, Loading: 3, Orientation: 4, Tray: 5}, false
	}
	return m, true
}

// ParseShapeRef accepts a bare kind or one of its aliases, "card:<size>",
// "custom:<id or name>", or a card size name on its own.
func ParseShapeRef(s string) (model.ShapeRef, bool) {
	v := strings.TrimSpace(s)
	lower := strings.ToLower(v)
	if ref, ok := shapeAliases[lower]; ok {
		return ref, true
	}
	if kind, key, ok := strings.Cut(v, ":"); ok && key != "" {
		switch strings.ToLower(kind) {
		case string(model.ShapeCard):
			return model.CardRef(strings.ToLower(key)), true
		case string(model.ShapeCustom):
			return model.CustomRef(key), true
		}
		return "", false
	}
	if _, ok := model.CardSizes[lower]; ok {
		return model.CardRef(lower), true
	}
	return "", false
}

func parseLoading(s string) (model.Loading, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "t", "flat", "":
		return model.LoadingTop, true
	case "edge", "e", "upright", "standing":
		return model.LoadingEdge, true
	default:
		return model.LoadingTop, false
	}
}

func parseOrientation(s string) (model.Orientation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lengthwise", "length", "l", "x", "":
		return model.OrientLengthwise, true
	case "widthwise", "width", "w", "y":
		return model.OrientWidthwise, true
	default:
		return model.OrientLengthwise, false
	}
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts one stack and its tray name from a row. It returns the
// stack, the tray name, an error message and a warning message.
func parseRow(row []string, m ColumnMapping, rowLabel string) (model.StackSpec, string, string, string) {
	shapeStr := getCell(row, m.Shape)
	if shapeStr == "" {
		return model.StackSpec{}, "", fmt.Sprintf("%s: Missing shape", rowLabel), ""
	}
	ref, ok := ParseShapeRef(shapeStr)
	if !ok {
		return model.StackSpec{}, "", fmt.Sprintf("%s: Unknown shape '%s'", rowLabel, shapeStr), ""
	}

	countStr := getCell(row, m.Count)
	if countStr == "" {
		return model.StackSpec{}, "", fmt.Sprintf("%s: Missing count", rowLabel), ""
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return model.StackSpec{}, "", fmt.Sprintf("%s: Invalid count '%s'", rowLabel, countStr), ""
	}
	if count <= 0 {
		return model.StackSpec{}, "", fmt.Sprintf("%s: Count must be positive", rowLabel), ""
	}

	var warnings []string
	loadStr := getCell(row, m.Loading)
	loading, ok := parseLoading(loadStr)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("%s: Unknown loading '%s', using top", rowLabel, loadStr))
	}
	if loading == model.LoadingTop && ref.Kind() == model.ShapeCard && loadStr == "" {
		loading = model.LoadingEdge
	}

	label := getCell(row, m.Label)
	st := model.NewTopStack(ref, count, label)
	if loading == model.LoadingEdge {
		orStr := getCell(row, m.Orientation)
		orient, ok := parseOrientation(orStr)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown orientation '%s', using lengthwise", rowLabel, orStr))
		}
		st = model.NewEdgeStack(ref, count, orient, label)
	}
	return st, getCell(row, m.Tray), "", strings.Join(warnings, "; ")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports stacks from a CSV file, detecting the delimiter and
// mapping columns by header name.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}

	var warnings []string
	delim := DetectCSVDelimiter(data)
	if delim != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delim]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}
	res := ImportCSVFromReader(bytes.NewReader(data), delim)
	res.Warnings = append(warnings, res.Warnings...)
	return res
}

// ImportCSVFromReader imports stacks from CSV data with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	if len(records) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}
	return importFromRows(records, "Line")
}

// ImportExcel imports stacks from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"Excel file has no sheets"}}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	if len(rows) == 0 {
		return ImportResult{Errors: []string{"Sheet is empty"}}
	}
	return importFromRows(rows, "Row")
}

// ImportFile dispatches on the file extension: .xlsx/.xlsm go to
// ImportExcel, everything else to ImportCSV.
func ImportFile(path string) ImportResult {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return ImportExcel(path)
	}
	return ImportCSV(path)
}

func importFromRows(rows [][]string, rowPrefix string) ImportResult {
	var res ImportResult

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
		res.Warnings = append(res.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Shape == -1 {
			missing = append(missing, "Shape")
		}
		if mapping.Count == -1 {
			missing = append(missing, "Count")
		}
		if len(missing) > 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return res
		}
	} else if len(rows[0]) >= 3 {
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][2])); err != nil {
			start = 1
			res.Warnings = append(res.Warnings, "Detected header row, skipping")
		}
	}

	index := map[string]int{}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		st, tray, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			res.Errors = append(res.Errors, errMsg)
			continue
		}
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}

		gi, ok := index[tray]
		if !ok {
			gi = len(res.Trays)
			index[tray] = gi
			res.Trays = append(res.Trays, TrayStacks{Name: tray})
		}
		g := &res.Trays[gi]
		if st.Loading == model.LoadingEdge {
			g.EdgeLoaded = append(g.EdgeLoaded, st)
		} else {
			g.TopLoaded = append(g.TopLoaded, st)
		}
	}
	return res
}
