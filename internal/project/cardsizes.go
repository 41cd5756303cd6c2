package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/TrayForge/internal/model"
)

// DefaultCardSizesPath returns ~/.trayforge/cardsizes.json, the user's card
// formats that extend or override the built-in table.
func DefaultCardSizesPath() string {
	return filepath.Join(DefaultConfigDir(), "cardsizes.json")
}

// SaveCardSizes writes the card-size table to a JSON file.
func SaveCardSizes(path string, sizes map[string]model.CardSize) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sizes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCardSizes reads a card-size table. A missing file yields an empty
// table. Sizes must be positive.
func LoadCardSizes(path string) (map[string]model.CardSize, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]model.CardSize{}, nil
		}
		return nil, err
	}
	var sizes map[string]model.CardSize
	if err := json.Unmarshal(data, &sizes); err != nil {
		return nil, err
	}
	for name, s := range sizes {
		if s.Width <= 0 || s.Length <= 0 {
			return nil, fmt.Errorf("card size %q: width and length must be positive", name)
		}
	}
	if sizes == nil {
		sizes = map[string]model.CardSize{}
	}
	return sizes, nil
}
