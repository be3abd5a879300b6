package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// prefsFilename is the state file under the data directory.
const prefsFilename = "prefs.json"

// Prefs is session state remembered across runs. Unlike Config it is
// written by the application, never edited by hand.
type Prefs struct {
	LastProjectPath string `json:"last_project_path,omitempty"`
	LastModelPath   string `json:"last_model_path,omitempty"`
}

// LoadPrefs reads the preference state from dataDir. A missing or
// unreadable file yields empty prefs, never an error.
func LoadPrefs(dataDir string) Prefs {
	var p Prefs
	data, err := os.ReadFile(filepath.Join(dataDir, prefsFilename))
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}
	}
	return p
}

// SavePrefs writes the preference state into dataDir, creating it if
// needed.
func SavePrefs(dataDir string, p Prefs) error {
	if dataDir == "" {
		return errors.New("data directory not set")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, prefsFilename), data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
