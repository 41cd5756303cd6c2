// Package project persists projects and edits them through a Store that
// keeps shared parameters in one place.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/TrayForge/internal/model"
)

// Format is a project file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format by file extension; anything that is not
// .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Marshal encodes a project. YAML output uses the same field names as JSON.
func Marshal(p model.Project, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	if format != FormatYAML {
		return data, nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// Unmarshal decodes a project and normalizes it: nil lists become empty
// and custom-shape references by name are rewritten to IDs.
func Unmarshal(data []byte, format Format) (model.Project, error) {
	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return model.Project{}, fmt.Errorf("parse yaml: %w", err)
		}
		var err error
		if data, err = json.Marshal(doc); err != nil {
			return model.Project{}, fmt.Errorf("convert yaml: %w", err)
		}
	}

	p := model.NewProject()
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("parse project: %w", err)
	}
	normalize(&p)
	return p, nil
}

// SaveProject writes p to path in the format its extension names.
func SaveProject(path string, p model.Project) error {
	data, err := Marshal(p, FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadProject reads a project file written by SaveProject.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, err
	}
	return Unmarshal(data, FormatFromPath(path))
}

func normalize(p *model.Project) {
	if p.Boxes == nil {
		p.Boxes = []model.Box{}
	}
	if p.Globals.CustomShapes == nil {
		p.Globals.CustomShapes = []model.CustomShape{}
	}
	for i := range p.Boxes {
		b := &p.Boxes[i]
		if b.Trays == nil {
			b.Trays = []model.Tray{}
		}
		if b.Fill == "" {
			b.Fill = model.FillWallsOnly
		}
		for j := range b.Trays {
			tp := &b.Trays[j].Params
			if tp.TopLoaded == nil {
				tp.TopLoaded = []model.StackSpec{}
			}
			if tp.EdgeLoaded == nil {
				tp.EdgeLoaded = []model.StackSpec{}
			}
		}
	}
	NormalizeShapeRefs(p)
}

// NormalizeShapeRefs rewrites custom:<name> references to custom:<id> for
// every stack whose key names a custom shape rather than its ID. It returns
// the number of references rewritten.
func NormalizeShapeRefs(p *model.Project) int {
	ids := make(map[string]bool, len(p.Globals.CustomShapes))
	byName := make(map[string]string, len(p.Globals.CustomShapes))
	for _, s := range p.Globals.CustomShapes {
		ids[s.ID] = true
		if _, dup := byName[s.Name]; !dup {
			byName[s.Name] = s.ID
		}
	}

	n := 0
	fix := func(stacks []model.StackSpec) {
		for i := range stacks {
			ref := stacks[i].Shape
			if ref.Kind() != model.ShapeCustom || ids[ref.Key()] {
				continue
			}
			if id, ok := byName[ref.Key()]; ok {
				stacks[i].Shape = model.CustomRef(id)
				n++
			}
		}
	}
	for bi := range p.Boxes {
		for ti := range p.Boxes[bi].Trays {
			tp := &p.Boxes[bi].Trays[ti].Params
			fix(tp.TopLoaded)
			fix(tp.EdgeLoaded)
		}
	}
	return n
}
