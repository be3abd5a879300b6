// Package restmodel is the model assistant backed by an HTTP inference
// server. The server owns the model weights; this plugin only asks it to
// load checkpoints and caption images.
package restmodel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/logging"
	"github.com/annoforge/annoforge/internal/plugins"
)

// checkpointMarker identifies a directory as a loadable model checkpoint.
const checkpointMarker = "config.json"

// promptKinds maps display names to the backend prompt tokens.
var promptKinds = map[string]string{
	"Caption":               "<CAPTION>",
	"Detailed Caption":      "<DETAILED_CAPTION>",
	"More Detailed Caption": "<MORE_DETAILED_CAPTION>",
	"Tags":                  "<GENERATE_TAGS>",
}

// Options configures the assistant.
type Options struct {
	// Endpoint is the base URL of the inference server.
	Endpoint string

	// CheckpointDir is scanned for loadable model checkpoints.
	CheckpointDir string

	// Timeout bounds a single HTTP call. Zero means a generous default,
	// since model loading can take minutes.
	Timeout time.Duration
}

// Plugin talks to the inference server.
type Plugin struct {
	log    zerolog.Logger
	rt     plugins.Runtime
	client *http.Client
	opts   Options

	mu     sync.Mutex
	loaded string
}

var _ plugins.ModelAssistant = (*Plugin)(nil)

// New creates the assistant. The endpoint is not contacted until Load.
func New(opts Options) *Plugin {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Plugin{
		log:    logging.Component("restmodel"),
		client: &http.Client{Timeout: timeout},
		opts:   opts,
	}
}

func (p *Plugin) Name() string { return "restmodel" }

func (p *Plugin) DisplayName() string { return "Model Assistant" }

func (p *Plugin) Capability() plugins.Capability { return plugins.CapabilityModelAssistant }

func (p *Plugin) Close() error { return nil }

func (p *Plugin) Init(rt plugins.Runtime) error {
	p.rt = rt
	return nil
}

// IsLoaded reports whether a checkpoint is active.
func (p *Plugin) IsLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded != ""
}

// LoadedPath returns the active checkpoint path, or empty.
func (p *Plugin) LoadedPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// SupportedPromptKinds maps display names to backend prompt tokens.
func (p *Plugin) SupportedPromptKinds() map[string]string {
	out := make(map[string]string, len(promptKinds))
	for k, v := range promptKinds {
		out[k] = v
	}
	return out
}

// AvailablePaths lists checkpoint directories under the configured
// checkpoint dir, sorted.
func (p *Plugin) AvailablePaths() ([]string, error) {
	if p.opts.CheckpointDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(p.opts.CheckpointDir)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(p.opts.CheckpointDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, checkpointMarker)); err == nil {
			paths = append(paths, dir)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Load asks the server to activate the checkpoint at path.
func (p *Plugin) Load(ctx context.Context, path string) error {
	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	err := p.post(ctx, "/v1/model/load", map[string]string{"path": path}, &resp)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("backend refused checkpoint: %s", resp.Error)
	}

	p.mu.Lock()
	p.loaded = path
	p.mu.Unlock()

	p.log.Info().Str("path", path).Msg("model loaded")
	return nil
}

// Infer captions the image at imagePath using the given prompt kind.
func (p *Plugin) Infer(ctx context.Context, imagePath, promptKind string) (string, error) {
	if !p.IsLoaded() {
		return "", fmt.Errorf("no model loaded")
	}
	token, ok := promptKinds[promptKind]
	if !ok {
		return "", fmt.Errorf("unsupported prompt kind %q", promptKind)
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	var resp struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	err = p.post(ctx, "/v1/infer", map[string]string{
		"image":  base64.StdEncoding.EncodeToString(data),
		"prompt": token,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("inference failed: %s", resp.Error)
	}
	return resp.Text, nil
}

func (p *Plugin) post(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.Endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("backend returned %s: %s", resp.Status, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
