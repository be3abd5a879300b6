package plugins

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/annoforge/annoforge/internal/core/logging"
)

// ManifestFilename marks a directory as a plugin package.
const ManifestFilename = "plugin.yaml"

// Manifest is the plugin package descriptor. Entry names a factory from
// the factory table; Settings is free-form configuration passed to it.
type Manifest struct {
	Entry    string         `yaml:"entry"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Factory builds one plugin instance from its manifest settings.
type Factory func(settings map[string]any) (Plugin, error)

// Discover scans dir for plugin packages and registers what it finds.
// A subdirectory is a candidate when it contains a manifest; a candidate
// loads when its entry names a known factory and the factory yields a
// plugin that registers cleanly. Any failure skips that one plugin with a
// logged warning, never the whole scan.
func Discover(dir string, factories map[string]Factory, reg *Registry) error {
	log := logging.Component("plugins")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read plugin directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pkgDir := filepath.Join(dir, entry.Name())

		manifest, err := readManifest(filepath.Join(pkgDir, ManifestFilename))
		if err != nil {
			if os.IsNotExist(err) {
				continue // not a plugin package
			}
			log.Warn().Err(err).Str("dir", pkgDir).Msg("plugin skipped")
			continue
		}

		factory, ok := factories[manifest.Entry]
		if !ok {
			log.Warn().Str("dir", pkgDir).Str("entry", manifest.Entry).Msg("plugin skipped: unknown entry")
			continue
		}

		p, err := buildPlugin(factory, manifest.Settings)
		if err != nil {
			log.Warn().Err(err).Str("dir", pkgDir).Msg("plugin skipped")
			continue
		}

		if err := reg.Register(p); err != nil {
			log.Warn().Err(err).Str("dir", pkgDir).Msg("plugin skipped")
		}
	}

	return nil
}

func readManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Entry == "" {
		return Manifest{}, fmt.Errorf("manifest has no entry")
	}
	return m, nil
}

// buildPlugin calls the factory with panics contained.
func buildPlugin(factory Factory, settings map[string]any) (p Plugin, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()

	p, err = factory(settings)
	if err != nil {
		return nil, fmt.Errorf("factory failed: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("factory returned no plugin")
	}
	return p, nil
}

// EnsureManifests seeds dir with a manifest per factory so a fresh
// install discovers the built-in plugins. Existing packages are left
// alone, so users can delete a manifest to disable a plugin.
func EnsureManifests(dir string, factories map[string]Factory) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plugin directory: %w", err)
	}

	for entry := range factories {
		pkgDir := filepath.Join(dir, entry)
		path := filepath.Join(pkgDir, ManifestFilename)

		if _, err := os.Stat(pkgDir); err == nil {
			continue
		}

		if err := os.MkdirAll(pkgDir, 0o755); err != nil {
			return fmt.Errorf("create plugin package %s: %w", entry, err)
		}
		data, err := yaml.Marshal(Manifest{Entry: entry})
		if err != nil {
			return fmt.Errorf("encode manifest for %s: %w", entry, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write manifest for %s: %w", entry, err)
		}
	}
	return nil
}
