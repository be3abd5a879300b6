// Package annoforge is the application root: it owns every core component
// and wires the event flows between them.
package annoforge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/appstate"
	"github.com/annoforge/annoforge/internal/core/config"
	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/imagecache"
	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/logging"
	"github.com/annoforge/annoforge/internal/core/notify"
	"github.com/annoforge/annoforge/internal/core/project"
	"github.com/annoforge/annoforge/internal/core/selection"
	"github.com/annoforge/annoforge/internal/data/stores"
	"github.com/annoforge/annoforge/internal/plugins"
	"github.com/annoforge/annoforge/internal/tasks"
)

// notificationLimit caps the in-memory notification history.
const notificationLimit = 100

// App holds the core components and their wiring. Construct with New,
// then register plugins and call Init before use.
type App struct {
	cfg *config.Config
	bus *eventbus.EventBus
	log zerolog.Logger

	State       *appstate.Store
	Selection   *selection.Model
	Library     *item.Library
	Projects    *project.Manager
	Annotations *stores.AnnotationStore
	Images      *imagecache.Cache
	Queue       *tasks.Queue
	Registry    *plugins.Registry
	Notices     *notify.Buffer

	mu         sync.Mutex
	runOnUI    func(func())
	watcher    *item.Watcher
	prevActive string
}

// New constructs the application root on the given bus and wires the
// internal event flows.
func New(cfg *config.Config, bus *eventbus.EventBus) *App {
	a := &App{
		cfg:         cfg,
		bus:         bus,
		log:         logging.Component("app"),
		State:       appstate.New(bus),
		Selection:   selection.New(bus),
		Library:     item.NewLibrary(cfg.ImagePatterns, cfg.DefaultPromptType),
		Projects:    project.NewManager(bus),
		Annotations: stores.NewAnnotationStore(),
		Images:      imagecache.New(),
		Queue:       tasks.NewQueue(bus, pollInterval(cfg)),
		Registry:    plugins.NewRegistry(),
		Notices:     notify.NewBuffer(notificationLimit),
		runOnUI:     func(fn func()) { fn() },
	}

	a.wire()
	eventbus.NewNotificationRouter(bus).Register()
	return a
}

// Bus returns the application event bus.
func (a *App) Bus() *eventbus.EventBus { return a.bus }

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// SetUIMarshaler installs the function used to run closures on the
// foreground loop. Until set, closures run synchronously on the calling
// goroutine.
func (a *App) SetUIMarshaler(fn func(func())) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runOnUI = fn
}

// Init initializes every registered plugin. Plugins that fail are dropped;
// the app keeps running with the rest.
func (a *App) Init() error {
	pool := plugins.NewWorkerPool(4)
	if err := a.Registry.InitAll(a.Runtime(), pool); err != nil {
		a.log.Warn().Err(err).Msg("some plugins failed to initialize")
	}

	if _, ok := a.Registry.PrimaryAssistant(); !ok {
		return fmt.Errorf("no model assistant plugin registered")
	}
	return nil
}

// wire connects the selection intents, the filter, and the project
// lifecycle.
func (a *App) wire() {
	a.bus.SubscribeSetChecked(func(p eventbus.SetCheckedPayload) {
		a.State.SetCheckedIDs(p.IDs)
	})
	a.bus.SubscribeSetActive(func(p eventbus.SetActivePayload) {
		a.State.SetActiveID(p.ID)
	})

	a.bus.SubscribeFilterChanged(func(p eventbus.FilterChangedPayload) {
		ids := make([]string, 0, len(p.Files))
		for _, it := range p.Files {
			ids = append(ids, it.ID)
		}
		a.Selection.UpdateItemOrder(ids)
	})

	a.bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		a.Notices.Add(notify.Notification{Level: p.Level, Title: p.Title, Message: p.Message})
	})

	a.bus.SubscribeActiveItemChanged(func(p eventbus.ActiveItemChangedPayload) {
		a.onActiveItemChanged(p.ID)
	})

	a.bus.SubscribeProjectLoaded(func(p eventbus.ProjectLoadedPayload) {
		a.onProjectLoaded(p)
	})
}

// onActiveItemChanged persists plugin state for the item being left and
// notifies observers about the new one.
func (a *App) onActiveItemChanged(id string) {
	a.mu.Lock()
	prev := a.prevActive
	a.prevActive = id
	a.mu.Unlock()

	ctx := context.Background()
	for _, p := range a.Registry.All() {
		if prev != "" {
			if sp, ok := p.(plugins.StatefulProcessor); ok {
				if state, save := sp.StateToPersist(); save {
					if err := a.Annotations.Save(ctx, prev, p.Name(), state); err != nil {
						a.log.Warn().Err(err).Str("plugin", p.Name()).Str("item", prev).Msg("persist plugin state")
					}
				}
			}
		}
		if ob, ok := p.(plugins.ItemObserver); ok {
			ob.OnItemSelected(id)
		}
	}
}

// onProjectLoaded connects storage, loads the image library, seeds the
// selection, restarts the source watcher, and remembers the project.
func (a *App) onProjectLoaded(p eventbus.ProjectLoadedPayload) {
	a.Annotations.Connect(p.DBPath)

	items := a.Library.Scan(p.DataSource)
	a.Images.InvalidateAll()
	a.State.SetFiles(items)

	if len(items) > 0 {
		a.Selection.HandleClick(items[0].ID, 0)
	}

	a.restartWatcher(p.DataSource)

	prefs := config.LoadPrefs(a.cfg.DataDir)
	prefs.LastProjectPath = p.Path
	if err := config.SavePrefs(a.cfg.DataDir, prefs); err != nil {
		a.log.Warn().Err(err).Msg("save prefs")
	}

	if prefs.LastModelPath != "" {
		if assistant, ok := a.Registry.PrimaryAssistant(); ok && !assistant.IsLoaded() {
			a.LoadModel(prefs.LastModelPath)
		}
	}
}

func (a *App) restartWatcher(dir string) {
	a.mu.Lock()
	old := a.watcher
	a.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close source watcher")
		}
	}

	w, err := item.WatchSource(dir, a.cfg.ImagePatterns, func(path, op string) {
		a.bus.PublishSourceChanged(eventbus.SourceChangedPayload{Path: path, Op: op})
	})
	if err != nil {
		a.log.Warn().Err(err).Str("dir", dir).Msg("source watcher unavailable")
		return
	}

	a.mu.Lock()
	a.watcher = w
	a.mu.Unlock()
}

// OpenProject loads the project at path, which may be a descriptor file or
// the directory containing one.
func (a *App) OpenProject(path string) error {
	return a.Projects.Load(path)
}

// CreateProject makes a new project directory over imageDir and opens it.
func (a *App) CreateProject(name, projectDir, imageDir string) error {
	return a.Projects.Create(name, projectDir, imageDir)
}

// RescanSource re-reads the image source of the open project.
func (a *App) RescanSource() {
	dir := a.Library.Dir()
	if dir == "" {
		return
	}
	a.Images.InvalidateAll()
	a.State.SetFiles(a.Library.Scan(dir))
}

// SaveCaption overwrites the caption for an item on disk and in memory and
// announces the change.
func (a *App) SaveCaption(id, caption string) error {
	if err := a.Library.SaveCaption(id, caption); err != nil {
		return err
	}
	if it, ok := a.Library.ByID(id); ok {
		a.State.RefreshItems([]item.Item{it})
	}
	a.bus.PublishCaptionSaved(eventbus.CaptionSavedPayload{ItemID: id})
	return nil
}

// ApplyPromptType sets the prompt type on every checked item.
func (a *App) ApplyPromptType(promptType string) {
	ids := a.State.CheckedIDs()
	for _, id := range ids {
		a.Library.SetPromptType(id, promptType)
	}
	a.State.RefreshItems(a.Library.ByIDs(ids))
}

// StartCaptioning queues caption generation for the checked items (or the
// active item when nothing is checked) and starts the queue.
func (a *App) StartCaptioning() error {
	assistant, ok := a.Registry.PrimaryAssistant()
	if !ok {
		return fmt.Errorf("no model assistant plugin registered")
	}
	if !assistant.IsLoaded() {
		return fmt.Errorf("no model loaded")
	}

	ids := a.State.CheckedIDs()
	if len(ids) == 0 {
		if active := a.State.ActiveID(); active != "" {
			ids = []string{active}
		}
	}
	items := a.Library.ByIDs(ids)
	if len(items) == 0 {
		return fmt.Errorf("no items selected")
	}

	defaultPrompt := a.cfg.DefaultPromptType
	a.Queue.Add(tasks.NewTask("Generating captions", items, func(ctx context.Context, it item.Item) (tasks.Result, error) {
		kind := it.PromptType
		if kind == "" {
			kind = defaultPrompt
		}
		text, err := assistant.Infer(ctx, it.Path, kind)
		if err != nil {
			return tasks.ResultFailure, err
		}
		if err := a.SaveCaption(it.ID, text); err != nil {
			return tasks.ResultFailure, err
		}
		a.bus.PublishRefreshThumbnail(eventbus.RefreshThumbnailPayload{ItemID: it.ID})
		return tasks.ResultSuccess, nil
	}))
	a.Queue.Start()
	return nil
}

// LoadModel queues loading the model checkpoint at path and starts the
// queue. The path is remembered on success.
func (a *App) LoadModel(path string) {
	assistant, ok := a.Registry.PrimaryAssistant()
	if !ok {
		a.log.Error().Msg("no model assistant plugin registered")
		return
	}

	a.Queue.Add(tasks.NewOnceTask("Loading model", func(ctx context.Context) error {
		if err := assistant.Load(ctx, path); err != nil {
			return err
		}
		prefs := config.LoadPrefs(a.cfg.DataDir)
		prefs.LastModelPath = path
		if err := config.SavePrefs(a.cfg.DataDir, prefs); err != nil {
			a.log.Warn().Err(err).Msg("save prefs")
		}
		return nil
	}))
	a.Queue.Start()
}

// Close stops the queue, the watcher, the plugins, and the stores.
func (a *App) Close() {
	a.Queue.Stop()
	a.Queue.Wait()

	a.mu.Lock()
	w := a.watcher
	a.watcher = nil
	a.mu.Unlock()
	if w != nil {
		if err := w.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close source watcher")
		}
	}

	if err := a.Registry.CloseAll(); err != nil {
		a.log.Warn().Err(err).Msg("close plugins")
	}
	if err := a.Annotations.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close annotation store")
	}
}

func pollInterval(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Queue.PollIntervalMS) * time.Millisecond
}
