package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/TrayForge/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultRimHeight = 3.0
	cfg.LogLevel = "warn"

	p := model.NewProject()
	p.Name = "Backed up"
	shape := model.NewCustomShape("Meeple", model.ShapeSquare, 16, 18)
	p.Globals.CustomShapes = []model.CustomShape{shape}
	box := model.NewBox("B")
	tray := model.NewTray("T", 0)
	tray.Params.TopLoaded = []model.StackSpec{model.NewTopStack(model.CustomRef("Meeple"), 4, "")}
	box.Trays = []model.Tray{tray}
	p.Boxes = []model.Box{box}

	if err := ExportAllData(path, cfg, &p); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}
	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if backup.Config.DefaultRimHeight != 3.0 || backup.Config.LogLevel != "warn" {
		t.Errorf("config not restored: %+v", backup.Config)
	}
	if backup.Project == nil || backup.Project.Name != "Backed up" {
		t.Fatalf("project not restored: %+v", backup.Project)
	}
	got := backup.Project.Boxes[0].Trays[0].Params.TopLoaded[0].Shape
	if got != model.CustomRef(shape.ID) {
		t.Errorf("legacy name reference should be rewritten to the ID, got %s", got)
	}
}

func TestExportAllDataWithoutProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "backup.json")
	if err := ExportAllData(path, model.DefaultAppConfig(), nil); err != nil {
		t.Fatalf("ExportAllData should create parent dirs: %v", err)
	}
	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Project != nil {
		t.Error("expected no project in a config-only backup")
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	if _, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	if err := os.WriteFile(path, []byte(`{"config":{"log_level":"debug"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestImportAllDataNilRecentProjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	data := []byte(`{"version":"1.0.0","created_at":"2025-01-01T00:00:00Z","config":{"recent_projects":null}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Config.RecentProjects == nil {
		t.Error("RecentProjects should not be nil after import")
	}
}
