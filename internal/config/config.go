// Package config persists pipeline settings as JSON under the user's home
// directory, so repeated CLI runs share defaults without re-flagging them.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/meshfab/unfold/internal/pipeline"
)

// DefaultConfigDir returns the default directory for application
// configuration. On all platforms this is ~/.unfold/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".unfold")
}

// DefaultConfigPath returns the default path for the settings file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Save persists settings to the given path as JSON. It creates any missing
// parent directories automatically.
func Save(path string, settings pipeline.Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads settings from the given path. If the file does not exist, it
// returns DefaultSettings with no error.
func Load(path string) (pipeline.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pipeline.DefaultSettings(), nil
		}
		return pipeline.Settings{}, err
	}
	settings := pipeline.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return pipeline.Settings{}, err
	}
	return settings, nil
}
