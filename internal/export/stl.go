package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/mesh"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName turns a box or tray name into a safe file name stem.
func FileName(name string) string {
	s := strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
	if s == "" {
		return "unnamed"
	}
	return s
}

// WriteBoxSTLs writes every solid of a generated box into dir as binary STL:
// one file per tray (prefixed with its letter), the box shell and the lid.
// It returns the paths written.
func WriteBoxSTLs(dir string, res *generate.BoxResult) ([]string, error) {
	if res.BoxMesh == nil {
		return nil, fmt.Errorf("box %q has no solids", res.Box.Name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	box := FileName(res.Box.Name)
	parts := []struct {
		name string
		m    *mesh.Mesh
	}{
		{box + "_box", res.BoxMesh},
		{box + "_lid", res.LidMesh},
	}
	for _, tr := range res.Trays {
		parts = append(parts, struct {
			name string
			m    *mesh.Mesh
		}{fmt.Sprintf("%s_%s_%s", box, tr.Letter, FileName(tr.Tray.Name)), tr.Mesh})
	}

	var written []string
	for _, p := range parts {
		if p.m == nil {
			continue
		}
		path := filepath.Join(dir, p.name+".stl")
		if err := writeSTLFile(path, p.name, p.m); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeSTLFile(path, name string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mesh.WriteSTL(f, name, m); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
