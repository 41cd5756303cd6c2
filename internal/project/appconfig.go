package project

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/TrayForge/internal/model"
)

// DefaultConfigDir returns the directory holding user configuration,
// ~/.trayforge on every platform.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".trayforge")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

// SaveAppConfig writes config to path as TOML, creating parent directories.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(config); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadAppConfig reads an AppConfig from path. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	if _, err := toml.DecodeFile(path, &config); err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	if config.RecentProjects == nil {
		config.RecentProjects = []string{}
	}
	return config, nil
}

// AddRecentProject moves path to the front of the recent list, keeping at
// most limit entries.
func AddRecentProject(config *model.AppConfig, path string, limit int) {
	list := []string{path}
	for _, p := range config.RecentProjects {
		if p != path && len(list) < limit {
			list = append(list, p)
		}
	}
	config.RecentProjects = list
}
