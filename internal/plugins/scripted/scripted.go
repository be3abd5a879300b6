// Package scripted is a model assistant that answers from a canned script
// instead of a backend. It keeps the captioning pipeline usable in tests
// and demos where no inference server exists.
package scripted

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annoforge/annoforge/internal/plugins"
)

// Plugin fabricates captions deterministically from the image filename.
type Plugin struct {
	rt plugins.Runtime

	mu        sync.Mutex
	loaded    bool
	responses map[string]string
}

var _ plugins.ModelAssistant = (*Plugin)(nil)

// New creates the scripted assistant.
func New() *Plugin {
	return &Plugin{responses: map[string]string{}}
}

func (p *Plugin) Name() string { return "scripted" }

func (p *Plugin) DisplayName() string { return "Scripted Assistant" }

func (p *Plugin) Capability() plugins.Capability { return plugins.CapabilityModelAssistant }

func (p *Plugin) Close() error { return nil }

func (p *Plugin) Init(rt plugins.Runtime) error {
	p.rt = rt
	return nil
}

// Script pins the answer for a specific image path. Unscripted paths get
// a generated caption.
func (p *Plugin) Script(imagePath, caption string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[imagePath] = caption
}

func (p *Plugin) IsLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Load always succeeds; there are no weights to load.
func (p *Plugin) Load(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = true
	return nil
}

// AvailablePaths offers a single pseudo checkpoint.
func (p *Plugin) AvailablePaths() ([]string, error) {
	return []string{"builtin"}, nil
}

func (p *Plugin) SupportedPromptKinds() map[string]string {
	return map[string]string{
		"Caption": "caption",
		"Tags":    "tags",
	}
}

// Infer returns the scripted answer for the path, or a caption derived
// from the filename.
func (p *Plugin) Infer(ctx context.Context, imagePath, promptKind string) (string, error) {
	if !p.IsLoaded() {
		return "", fmt.Errorf("no model loaded")
	}
	if _, ok := p.SupportedPromptKinds()[promptKind]; !ok {
		return "", fmt.Errorf("unsupported prompt kind %q", promptKind)
	}

	p.mu.Lock()
	caption, ok := p.responses[imagePath]
	p.mu.Unlock()
	if ok {
		return caption, nil
	}

	base := filepath.Base(imagePath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	if promptKind == "Tags" {
		return name, nil
	}
	return fmt.Sprintf("an image of %s", name), nil
}
