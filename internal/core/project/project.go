// Package project reads and writes project descriptors. A project is a
// directory with a descriptor file pointing at the image source and the
// annotation database.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/logging"
)

// DescriptorFilename is the well-known name of the project descriptor
// inside a project directory.
const DescriptorFilename = "project.annoforge"

// DescriptorVersion is the format version written into new descriptors.
const DescriptorVersion = 1

// Descriptor is the on-disk project file.
type Descriptor struct {
	Name       string `json:"name"`
	Version    int    `json:"version"`
	DataSource string `json:"data_source"`
	DBPath     string `json:"db_path"`
}

// Manager loads and creates projects and announces the current one on the
// bus.
type Manager struct {
	bus *eventbus.EventBus
	log zerolog.Logger

	current Descriptor
	path    string
}

// NewManager creates a project manager publishing to bus.
func NewManager(bus *eventbus.EventBus) *Manager {
	return &Manager{
		bus: bus,
		log: logging.Component("project"),
	}
}

// Create makes a new project directory with a descriptor pointing at
// imageDir, then loads it. The directory must not already exist.
func (m *Manager) Create(name, projectDir, imageDir string) error {
	if _, err := os.Stat(projectDir); err == nil {
		return fmt.Errorf("project directory already exists: %s", projectDir)
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	absImages, err := filepath.Abs(imageDir)
	if err != nil {
		return fmt.Errorf("resolve image directory: %w", err)
	}

	desc := Descriptor{
		Name:       name,
		Version:    DescriptorVersion,
		DataSource: absImages,
		DBPath:     filepath.Join(projectDir, "annotations.db"),
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}

	descPath := filepath.Join(projectDir, DescriptorFilename)
	if err := os.WriteFile(descPath, data, 0o644); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}

	m.log.Info().Str("name", name).Str("dir", projectDir).Msg("project created")
	return m.Load(descPath)
}

// Load reads the descriptor at path, which may be the descriptor file
// itself or the directory containing it, and publishes the loaded project.
func (m *Manager) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open project: %w", err)
	}
	if info.IsDir() {
		path = filepath.Join(path, DescriptorFilename)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read descriptor: %w", err)
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return fmt.Errorf("parse descriptor: %w", err)
	}
	if desc.Name == "" {
		return fmt.Errorf("descriptor %s has no project name", path)
	}
	if desc.DataSource == "" {
		return fmt.Errorf("descriptor %s has no data source", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve descriptor path: %w", err)
	}

	m.current = desc
	m.path = abs
	m.log.Info().Str("name", desc.Name).Str("source", desc.DataSource).Msg("project loaded")

	m.bus.PublishProjectLoaded(eventbus.ProjectLoadedPayload{
		Name:       desc.Name,
		Version:    desc.Version,
		DataSource: desc.DataSource,
		DBPath:     desc.DBPath,
		Path:       abs,
	})
	return nil
}

// Current returns the loaded descriptor and its path. The boolean is false
// when no project has been loaded yet.
func (m *Manager) Current() (Descriptor, string, bool) {
	if m.path == "" {
		return Descriptor{}, "", false
	}
	return m.current, m.path, true
}
