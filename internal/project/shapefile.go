package project

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/piwi3910/TrayForge/internal/model"
)

// ExportShape writes a single custom shape to a JSON file for sharing.
func ExportShape(path string, shape model.CustomShape) error {
	data, err := json.MarshalIndent(shape, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportShape reads a shape written by ExportShape. The ID is dropped so
// the receiving project assigns its own.
func ImportShape(path string) (model.CustomShape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.CustomShape{}, err
	}
	var shape model.CustomShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return model.CustomShape{}, err
	}
	if shape.Name == "" {
		return model.CustomShape{}, errors.New("imported shape has no name")
	}
	if len(shape.Outline) == 0 && (shape.Width <= 0 || shape.Length <= 0) {
		return model.CustomShape{}, errors.New("imported shape has neither an outline nor a size")
	}
	shape.ID = ""
	return shape, nil
}
