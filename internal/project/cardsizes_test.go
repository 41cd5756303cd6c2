package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/TrayForge/internal/model"
)

func TestSaveAndLoadCardSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardsizes.json")
	sizes := map[string]model.CardSize{
		"poker":    {Width: 63, Length: 88},
		"standard": {Width: 64, Length: 89},
	}
	if err := SaveCardSizes(path, sizes); err != nil {
		t.Fatalf("SaveCardSizes failed: %v", err)
	}
	loaded, err := LoadCardSizes(path)
	if err != nil {
		t.Fatalf("LoadCardSizes failed: %v", err)
	}
	if len(loaded) != 2 || loaded["poker"].Length != 88 {
		t.Errorf("unexpected sizes %+v", loaded)
	}
	if s, _ := model.LookupCardSize("standard", loaded); s.Width != 64 {
		t.Errorf("override should win over the built-in table, got %+v", s)
	}
}

func TestLoadCardSizesMissingFile(t *testing.T) {
	sizes, err := LoadCardSizes(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sizes == nil || len(sizes) != 0 {
		t.Errorf("expected an empty table, got %+v", sizes)
	}
}

func TestLoadCardSizesRejectsBadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardsizes.json")
	if err := os.WriteFile(path, []byte(`{"flat":{"width":0,"length":10}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCardSizes(path); err == nil {
		t.Fatal("expected an error for a zero width")
	}
}

func TestExportImportShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ship.json")
	shape := model.NewCustomShape("Ship", model.ShapeHex, 20, 24)
	if err := ExportShape(path, shape); err != nil {
		t.Fatalf("ExportShape failed: %v", err)
	}
	got, err := ImportShape(path)
	if err != nil {
		t.Fatalf("ImportShape failed: %v", err)
	}
	if got.Name != "Ship" || got.Width != 20 || got.BaseShape != model.ShapeHex {
		t.Errorf("unexpected shape %+v", got)
	}
	if got.ID != "" {
		t.Error("imported shapes should not keep their ID")
	}
}

func TestImportShapeValidation(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"noname.json": `{"width":10,"length":10}`,
		"nosize.json": `{"name":"x"}`,
		"bad.json":    `{`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ImportShape(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
