// Package item holds the project's image items and their sidecar captions.
// The Library is the in-memory source of truth for what a project contains;
// its contents change only through Scan.
package item

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/logging"
)

// DefaultPatterns matches the supported image formats.
var DefaultPatterns = []string{"*.{png,jpg,jpeg,bmp,tiff,webp}"}

// Item is one source image plus its derived caption metadata.
// The ID is the filename, which is unique within a project directory.
type Item struct {
	ID          string `json:"item_id"`
	Filename    string `json:"filename"`
	Path        string `json:"filepath"`
	CaptionPath string `json:"txt_path"`
	Caption     string `json:"caption"`
	PromptType  string `json:"prompt_type"`
}

// Library indexes the items of the currently open project.
// All accessors return copies; background tasks never see the index mutate
// under them.
type Library struct {
	mu            sync.RWMutex
	log           zerolog.Logger
	dir           string
	patterns      []string
	defaultPrompt string
	order         []string
	items         map[string]Item
}

// NewLibrary creates an empty library. Patterns are doublestar globs matched
// case-insensitively against filenames; nil falls back to DefaultPatterns.
func NewLibrary(patterns []string, defaultPrompt string) *Library {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return &Library{
		log:           logging.Component("library"),
		patterns:      patterns,
		defaultPrompt: defaultPrompt,
		items:         make(map[string]Item),
	}
}

// Scan replaces the library contents with the images found in dir.
// Captions are read from sidecar .txt files next to each image. A missing
// directory or unreadable caption degrades to an empty result or empty
// caption; neither is fatal.
func (l *Library) Scan(dir string) []Item {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.dir = dir
	l.order = l.order[:0]
	l.items = make(map[string]Item)

	entries, err := os.ReadDir(dir)
	if err != nil {
		l.log.Error().Err(err).Str("dir", dir).Msg("data source directory not readable")
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !l.matches(entry.Name()) {
			continue
		}
		l.order = append(l.order, entry.Name())
	}
	sort.Strings(l.order)

	for _, filename := range l.order {
		path := filepath.Join(dir, filename)
		captionPath := CaptionPath(path)

		caption := ""
		if data, err := os.ReadFile(captionPath); err == nil {
			caption = strings.TrimSpace(string(data))
		} else if !os.IsNotExist(err) {
			l.log.Error().Err(err).Str("item", filename).Msg("could not read caption")
		}

		l.items[filename] = Item{
			ID:          filename,
			Filename:    filename,
			Path:        path,
			CaptionPath: captionPath,
			Caption:     caption,
			PromptType:  l.defaultPrompt,
		}
	}

	l.log.Info().Int("count", len(l.order)).Str("dir", dir).Msg("scanned images")
	return l.allLocked()
}

// CaptionPath derives the sidecar caption file path from an image path by
// extension substitution.
func CaptionPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + ".txt"
}

func (l *Library) matches(name string) bool {
	return matchesAny(l.patterns, name)
}

// Dir returns the directory of the last scan.
func (l *Library) Dir() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dir
}

// All returns every item in display order.
func (l *Library) All() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allLocked()
}

func (l *Library) allLocked() []Item {
	out := make([]Item, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.items[id])
	}
	return out
}

// ByID returns a single item by identifier.
func (l *Library) ByID(id string) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	it, ok := l.items[id]
	return it, ok
}

// ByIDs returns the items for the given identifiers, skipping unknown ones.
func (l *Library) ByIDs(ids []string) []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := l.items[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

// SaveCaption overwrites the item's sidecar caption file and updates the
// in-memory record. The file is rewritten wholesale.
func (l *Library) SaveCaption(id, caption string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	it, ok := l.items[id]
	if !ok {
		return fmt.Errorf("unknown item %q", id)
	}

	content := strings.TrimSpace(caption)
	if err := os.WriteFile(it.CaptionPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write caption for %q: %w", id, err)
	}

	it.Caption = content
	l.items[id] = it
	l.log.Debug().Str("item", id).Msg("caption saved")
	return nil
}

// SetPromptType updates the prompt type for a single item in memory.
func (l *Library) SetPromptType(id, promptType string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it, ok := l.items[id]
	if !ok {
		l.log.Warn().Str("item", id).Msg("prompt type update for unknown item")
		return
	}
	it.PromptType = promptType
	l.items[id] = it
}
