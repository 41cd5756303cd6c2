package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/model"
)

// buildTestResults generates a two-box project. Solids are built only when
// solids is true.
func buildTestResults(t *testing.T, solids bool) []*generate.BoxResult {
	t.Helper()
	p := model.NewProject()

	tokens := model.NewTray("Tokens", 0)
	tokens.Params.TopLoaded = []model.StackSpec{
		model.NewTopStack("hex", 12, "Resources"),
		model.NewTopStack("circle", 8, "VP"),
	}
	cards := model.NewTray("Cards", 1)
	cards.Params.EdgeLoaded = []model.StackSpec{
		model.NewEdgeStack(model.CardRef("mini-euro"), 30, model.OrientLengthwise, "Events"),
	}
	b1 := model.NewBox("Base Game")
	b1.Lid.EmbossName = false
	b1.Trays = []model.Tray{tokens, cards}

	extra := model.NewTray("Expansion", 2)
	extra.Params.TopLoaded = []model.StackSpec{model.NewTopStack("square", 5, "")}
	b2 := model.NewBox("Expansion")
	b2.Lid.EmbossName = false
	b2.Fill = model.FillSolid
	b2.Trays = []model.Tray{extra}

	p.Boxes = []model.Box{b1, b2}

	results, err := generate.GenerateAll(context.Background(), p, generate.Options{LayoutOnly: !solids})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return results
}

func TestExportReferenceSheet_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.pdf")

	results := buildTestResults(t, false)
	if err := ExportReferenceSheet(path, results, SheetOptions{Config: model.DefaultAppConfig()}); err != nil {
		t.Fatalf("ExportReferenceSheet returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportReferenceSheet_NoBoxes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportReferenceSheet(path, nil, SheetOptions{}); err == nil {
		t.Fatal("expected error for no boxes, got nil")
	}
}

func TestExportReferenceSheet_EmptyBox(t *testing.T) {
	p := model.NewProject()
	p.Boxes = []model.Box{model.NewBox("Empty")}
	res, err := generate.Generate(context.Background(), p, 0, generate.Options{LayoutOnly: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "empty_box.pdf")
	if err := ExportReferenceSheet(path, []*generate.BoxResult{res}, SheetOptions{}); err != nil {
		t.Fatalf("ExportReferenceSheet returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
}

func TestEstimateBox(t *testing.T) {
	cfg := model.DefaultAppConfig()

	layoutOnly := buildTestResults(t, false)
	if _, ok := EstimateBox(layoutOnly[0], cfg, 20); ok {
		t.Error("expected no estimate without solids")
	}

	results := buildTestResults(t, true)
	est, ok := EstimateBox(results[1], cfg, 20)
	if !ok {
		t.Fatal("expected an estimate for a generated box")
	}
	if est.VolumeMM3 <= 0 || est.FilamentGrams <= 0 || est.FilamentLength <= 0 {
		t.Errorf("expected positive estimate, got %+v", est)
	}

	full, _ := EstimateBox(results[1], cfg, 100)
	if full.FilamentGrams <= est.FilamentGrams {
		t.Errorf("full infill should need more filament: %.1f <= %.1f", full.FilamentGrams, est.FilamentGrams)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 30, 8},
		{15, 40, 7},
		{8, 8, 5},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%.0f, %.0f) = %.0f, want %.0f", tt.w, tt.h, got, tt.want)
		}
	}
}
