// Package findreplace rewrites captions across the current selection.
package findreplace

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/logging"
	"github.com/annoforge/annoforge/internal/core/notify"
	"github.com/annoforge/annoforge/internal/plugins"
	"github.com/annoforge/annoforge/internal/tasks"
)

// Plugin replaces a substring in the captions of the checked items. Items
// whose caption does not contain the search string are skipped.
type Plugin struct {
	log zerolog.Logger
	rt  plugins.Runtime

	mu      sync.Mutex
	find    string
	replace string
}

var _ plugins.BatchOperation = (*Plugin)(nil)

// New creates the find/replace plugin.
func New() *Plugin {
	return &Plugin{log: logging.Component("findreplace")}
}

func (p *Plugin) Name() string { return "findreplace" }

func (p *Plugin) DisplayName() string { return "Find and Replace" }

func (p *Plugin) Capability() plugins.Capability { return plugins.CapabilityBatchOperation }

func (p *Plugin) Close() error { return nil }

func (p *Plugin) Init(rt plugins.Runtime) error {
	p.rt = rt
	return nil
}

// Configure sets the search and replacement strings for the next Execute.
func (p *Plugin) Configure(find, replace string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.find = find
	p.replace = replace
}

// Execute queues the replacement over the checked items.
func (p *Plugin) Execute(ctx context.Context) error {
	p.mu.Lock()
	find, replace := p.find, p.replace
	p.mu.Unlock()

	if find == "" {
		return errors.New("nothing to find")
	}

	items := p.rt.ItemsByID(p.rt.CheckedItemIDs())
	if len(items) == 0 {
		p.rt.Notify(notify.LevelWarning, "Find and Replace", "no items checked")
		return nil
	}

	p.rt.RunJob("Find and Replace", items, func(ctx context.Context, it item.Item) (tasks.Result, error) {
		if !strings.Contains(it.Caption, find) {
			return tasks.ResultSkipped, nil
		}
		updated := strings.ReplaceAll(it.Caption, find, replace)
		if err := p.rt.SaveCaption(it.ID, updated); err != nil {
			return tasks.ResultFailure, err
		}
		return tasks.ResultSuccess, nil
	})
	return nil
}
