package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/TrayForge/internal/model"
)

// BackupVersion is written into every backup envelope.
const BackupVersion = "1.0.0"

// BackupData is the envelope for exporting the user's configuration
// together with a project.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
	Project   *model.Project  `json:"project,omitempty"`
}

// ExportAllData writes config and, when non-nil, the project to a single
// JSON file.
func ExportAllData(exportPath string, config model.AppConfig, project *model.Project) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Project:   project,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup file. The caller applies what it contains.
// Legacy name references in the project are rewritten to shape IDs.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Project != nil {
		normalize(backup.Project)
	}
	return backup, nil
}
