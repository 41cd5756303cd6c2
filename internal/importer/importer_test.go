package importer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"

	"github.com/piwi3910/TrayForge/internal/model"
)

// ─── DetectCSVDelimiter ────────────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	cases := map[rune]string{
		',':  "Label,Shape,Count\nRes,hex,20\nVP,circle,10\n",
		';':  "Label;Shape;Count\nRes;hex;20\nVP;circle;10\n",
		'\t': "Label\tShape\tCount\nRes\thex\t20\nVP\tcircle\t10\n",
		'|':  "Label|Shape|Count\nRes|hex|20\nVP|circle|10\n",
	}
	for want, data := range cases {
		if got := DetectCSVDelimiter([]byte(data)); got != want {
			t.Errorf("expected %q delimiter, got %q", want, got)
		}
	}
}

// ─── DetectColumns ─────────────────────────────────────────

func TestDetectColumns_Headers(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Tray", "QTY", "Token", "Name", "Loading"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Tray != 0 || mapping.Count != 1 || mapping.Shape != 2 || mapping.Label != 3 || mapping.Loading != 4 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.Orientation != -1 {
		t.Errorf("expected no orientation column, got %d", mapping.Orientation)
	}
}

func TestDetectColumns_Positional(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Resources", "hex", "20"})
	if isHeader {
		t.Fatal("data row must not be detected as header")
	}
	if mapping.Label != 0 || mapping.Shape != 1 || mapping.Count != 2 || mapping.Tray != 5 {
		t.Errorf("unexpected positional mapping %+v", mapping)
	}
}

// ─── ParseShapeRef ─────────────────────────────────────────

func TestParseShapeRef(t *testing.T) {
	cases := []struct {
		in   string
		want model.ShapeRef
		ok   bool
	}{
		{"hex", "hex", true},
		{"Hexagon", "hex", true},
		{" coin ", "circle", true},
		{"tri", "triangle", true},
		{"card:Standard", "card:standard", true},
		{"tarot", "card:tarot", true},
		{"custom:Ship Token", "custom:Ship Token", true},
		{"blob", "", false},
		{"foo:bar", "", false},
	}
	for _, c := range cases {
		got, ok := ParseShapeRef(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseShapeRef(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

// ─── CSV import ────────────────────────────────────────────

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportCSV_GroupsByTray(t *testing.T) {
	path := writeFile(t, "stacks.csv", strings.Join([]string{
		"Tray,Label,Shape,Count,Loading,Orientation",
		"Tokens,Resources,hex,20,top,",
		"Cards,Deck,card:standard,60,edge,widthwise",
		"Tokens,VP,circle,10,,",
		"Tokens,Bad,blob,3,,",
	}, "\n"))

	res := ImportCSV(path)
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Line 5") {
		t.Fatalf("expected one error for line 5, got %v", res.Errors)
	}
	if len(res.Trays) != 2 {
		t.Fatalf("expected 2 trays, got %d", len(res.Trays))
	}
	if res.StackCount() != 3 {
		t.Errorf("expected 3 stacks, got %d", res.StackCount())
	}

	tokens := res.Trays[0]
	if tokens.Name != "Tokens" || len(tokens.TopLoaded) != 2 || len(tokens.EdgeLoaded) != 0 {
		t.Fatalf("unexpected first tray %+v", tokens)
	}
	if tokens.TopLoaded[0].Label != "Resources" || tokens.TopLoaded[0].Count != 20 {
		t.Errorf("unexpected first stack %+v", tokens.TopLoaded[0])
	}
	if tokens.TopLoaded[1].Shape != "circle" {
		t.Errorf("expected circle second, got %q", tokens.TopLoaded[1].Shape)
	}

	cards := res.Trays[1]
	if len(cards.EdgeLoaded) != 1 {
		t.Fatalf("expected one edge-loaded stack, got %+v", cards)
	}
	if cards.EdgeLoaded[0].Orientation != model.OrientWidthwise {
		t.Errorf("expected widthwise, got %q", cards.EdgeLoaded[0].Orientation)
	}
}

func TestImportCSV_CardsDefaultToEdge(t *testing.T) {
	path := writeFile(t, "cards.csv", "Shape,Count\ncard:euro,40\nhex,5\n")
	res := ImportCSV(path)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Trays) != 1 || res.Trays[0].Name != "" {
		t.Fatalf("expected a single unnamed tray, got %+v", res.Trays)
	}
	g := res.Trays[0]
	if len(g.EdgeLoaded) != 1 || g.EdgeLoaded[0].Orientation != model.OrientLengthwise {
		t.Errorf("expected the card stack edge-loaded lengthwise, got %+v", g.EdgeLoaded)
	}
	if len(g.TopLoaded) != 1 {
		t.Errorf("expected the hex stack top-loaded, got %+v", g.TopLoaded)
	}
}

func TestImportCSV_SemicolonWithoutHeader(t *testing.T) {
	path := writeFile(t, "plain.csv", "Res;hex;20\nVP;circle;10\n")
	res := ImportCSV(path)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.StackCount() != 2 {
		t.Fatalf("expected 2 stacks, got %d", res.StackCount())
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a semicolon warning, got %v", res.Warnings)
	}
}

func TestImportCSV_RowErrors(t *testing.T) {
	path := writeFile(t, "bad.csv", "Shape,Count\n,3\nhex,abc\nhex,0\nhex,\n")
	res := ImportCSV(path)
	if len(res.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %v", res.Errors)
	}
	if res.StackCount() != 0 {
		t.Errorf("expected no stacks, got %d", res.StackCount())
	}
}

func TestImportCSV_MissingRequiredColumns(t *testing.T) {
	path := writeFile(t, "nocount.csv", "Label,Shape\nRes,hex\n")
	res := ImportCSV(path)
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Count") {
		t.Fatalf("expected missing Count error, got %v", res.Errors)
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "  \n")
	res := ImportCSV(path)
	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
}

func TestImportCSV_MissingFile(t *testing.T) {
	res := ImportCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Cannot open") {
		t.Fatalf("expected open error, got %v", res.Errors)
	}
}

// ─── Excel import ──────────────────────────────────────────

func TestImportExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Name", "Shape", "Qty", "Loading"},
		{"Coins", "coin", 12, "top"},
		{"Deck", "card:standard", 55, "edge"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "stacks.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	res := ImportFile(path)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Trays) != 1 {
		t.Fatalf("expected one tray, got %d", len(res.Trays))
	}
	g := res.Trays[0]
	if len(g.TopLoaded) != 1 || g.TopLoaded[0].Count != 12 || g.TopLoaded[0].Shape != "circle" {
		t.Errorf("unexpected top stacks %+v", g.TopLoaded)
	}
	if len(g.EdgeLoaded) != 1 || g.EdgeLoaded[0].Shape != "card:standard" {
		t.Errorf("unexpected edge stacks %+v", g.EdgeLoaded)
	}
}

// ─── DXF import ────────────────────────────────────────────

func TestImportDXF_RectangleWithHole(t *testing.T) {
	d := dxf.NewDrawing()
	// 30 x 20 outline drawn as loose lines, out of order.
	lines := [][4]float64{
		{10, 5, 40, 5},
		{10, 25, 10, 5},
		{40, 5, 40, 25},
		{40, 25, 10, 25},
	}
	for _, l := range lines {
		if _, err := d.Line(l[0], l[1], 0, l[2], l[3], 0); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.Circle(25, 15, 0, 3); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "token.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	res := ImportDXF(path, "Ship")
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Shapes) != 1 {
		t.Fatalf("expected one shape, got %d", len(res.Shapes))
	}
	s := res.Shapes[0]
	if s.Name != "Ship" || s.ID == "" {
		t.Errorf("unexpected shape identity %q/%q", s.Name, s.ID)
	}
	if math.Abs(s.Width-30) > 0.01 || math.Abs(s.Length-20) > 0.01 {
		t.Errorf("expected 30 x 20, got %.2f x %.2f", s.Width, s.Length)
	}
	min, _ := s.Outline.BoundingBox()
	if math.Abs(min.X) > 1e-9 || math.Abs(min.Y) > 1e-9 {
		t.Errorf("outline not normalized, min %+v", min)
	}
	if s.Outline.SignedArea() <= 0 {
		t.Error("outline must be counter-clockwise")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "inner") {
		t.Errorf("expected an inner contour warning, got %v", res.Warnings)
	}
}

func TestImportDXF_SeveralShapesLargestFirst(t *testing.T) {
	d := dxf.NewDrawing()
	if _, err := d.Circle(0, 0, 0, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Circle(50, 0, 0, 10); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "discs.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	res := ImportDXF(path, "Disc")
	if len(res.Shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d (%v)", len(res.Shapes), res.Errors)
	}
	if res.Shapes[0].Name != "Disc 1" || res.Shapes[1].Name != "Disc 2" {
		t.Errorf("unexpected names %q, %q", res.Shapes[0].Name, res.Shapes[1].Name)
	}
	if math.Abs(res.Shapes[0].Width-20) > 0.01 || math.Abs(res.Shapes[1].Width-10) > 0.01 {
		t.Errorf("expected widths 20 then 10, got %.2f, %.2f", res.Shapes[0].Width, res.Shapes[1].Width)
	}
}

func TestImportDXF_OpenChain(t *testing.T) {
	d := dxf.NewDrawing()
	if _, err := d.Line(0, 0, 0, 10, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Line(10, 0, 0, 10, 10, 0); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "open.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	res := ImportDXF(path, "Open")
	if len(res.Shapes) != 0 || len(res.Errors) != 1 {
		t.Fatalf("expected no shapes and one error, got %d shapes, %v", len(res.Shapes), res.Errors)
	}
}

func TestImportDXF_MissingFile(t *testing.T) {
	res := ImportDXF(filepath.Join(t.TempDir(), "missing.dxf"), "x")
	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
}

func TestBulgeArc_Semicircle(t *testing.T) {
	// Bulge 1 is a half circle; from (0,0) to (10,0) counter-clockwise dips below the chord.
	pts := bulgeArc(model.Point2D{X: 0, Y: 0}, model.Point2D{X: 10, Y: 0}, 1)
	mid := pts[arcSegments/2]
	if math.Abs(mid.X-5) > 1e-6 || math.Abs(mid.Y+5) > 1e-6 {
		t.Errorf("expected midpoint (5,-5), got %+v", mid)
	}
}
