// Package csvexport exports item captions to a CSV file.
package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/logging"
	"github.com/annoforge/annoforge/internal/core/notify"
	"github.com/annoforge/annoforge/internal/plugins"
)

// DefaultFilename is used when no output path is configured.
const DefaultFilename = "captions.csv"

// Plugin exports the current selection (or everything, when nothing is
// checked) as one CSV row per item.
type Plugin struct {
	log zerolog.Logger
	rt  plugins.Runtime

	// OutPath is where Execute writes. Relative paths resolve against the
	// working directory.
	OutPath string
}

var _ plugins.BatchOperation = (*Plugin)(nil)

// New creates the export plugin.
func New() *Plugin {
	return &Plugin{
		log:     logging.Component("csvexport"),
		OutPath: DefaultFilename,
	}
}

func (p *Plugin) Name() string { return "csvexport" }

func (p *Plugin) DisplayName() string { return "CSV Export" }

func (p *Plugin) Capability() plugins.Capability { return plugins.CapabilityBatchOperation }

func (p *Plugin) Close() error { return nil }

func (p *Plugin) Init(rt plugins.Runtime) error {
	p.rt = rt
	return nil
}

// Execute queues the export as a background task.
func (p *Plugin) Execute(ctx context.Context) error {
	ids := p.rt.CheckedItemIDs()
	if len(ids) == 0 {
		ids = p.rt.AllItemIDs()
	}
	items := p.rt.ItemsByID(ids)
	if len(items) == 0 {
		p.rt.Notify(notify.LevelWarning, "CSV Export", "nothing to export")
		return nil
	}

	out := p.OutPath
	p.rt.RunJobOnce("Export CSV", func(ctx context.Context) error {
		if err := p.exportFile(out, items); err != nil {
			p.rt.Notify(notify.LevelError, "CSV Export", err.Error())
			return err
		}
		p.rt.Notify(notify.LevelInfo, "CSV Export",
			fmt.Sprintf("wrote %d rows to %s", len(items), out))
		return nil
	})
	return nil
}

func (p *Plugin) exportFile(path string, items []item.Item) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := ExportTo(f, items); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ExportTo writes a header row followed by one row per item.
func ExportTo(w io.Writer, items []item.Item) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"item_id", "filename", "filepath", "caption", "prompt_type"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		if err := cw.Write([]string{it.ID, it.Filename, it.Path, it.Caption, it.PromptType}); err != nil {
			return fmt.Errorf("write row for %s: %w", it.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
