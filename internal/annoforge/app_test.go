package annoforge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoforge/annoforge/internal/core/appstate"
	"github.com/annoforge/annoforge/internal/core/config"
	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/eventbus/testbus"
	"github.com/annoforge/annoforge/internal/core/notify"
	"github.com/annoforge/annoforge/internal/plugins/scripted"
)

type testApp struct {
	*App
	bus       *testbus.Bus
	assistant *scripted.Plugin
	imageDir  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	imageDir := t.TempDir()
	for _, name := range []string{"ant.png", "bee.png", "cow.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(imageDir, name), []byte("img"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "ant.txt"), []byte("an ant\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	bus := testbus.New(t)
	app := New(&cfg, bus.EventBus)

	assistant := scripted.New()
	require.NoError(t, app.Registry.Register(assistant))
	require.NoError(t, app.Init())

	t.Cleanup(app.Close)
	return &testApp{App: app, bus: bus, assistant: assistant, imageDir: imageDir}
}

func (a *testApp) openProject(t *testing.T) {
	t.Helper()
	projectDir := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, a.CreateProject("test", projectDir, a.imageDir))
}

func TestInitRequiresModelAssistant(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	app := New(&cfg, testbus.New(t).EventBus)

	err := app.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model assistant")
}

func TestOpenProjectLoadsEverything(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)

	files := a.State.Files()
	require.Len(t, files, 3)
	assert.Equal(t, "ant.png", files[0].ID)
	assert.Equal(t, "an ant", files[0].Caption)

	// the first item starts checked and focused
	assert.Equal(t, []string{"ant.png"}, a.State.CheckedIDs())
	assert.Equal(t, "ant.png", a.State.ActiveID())

	assert.True(t, a.Annotations.Connected())

	prefs := config.LoadPrefs(a.Config().DataDir)
	assert.NotEmpty(t, prefs.LastProjectPath)
}

func TestSaveCaption(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)
	a.bus.Reset()

	require.NoError(t, a.SaveCaption("bee.png", "a honey bee"))

	data, err := os.ReadFile(filepath.Join(a.imageDir, "bee.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a honey bee", string(data))

	// the state snapshot follows without a file-list event
	var bee string
	for _, it := range a.State.Files() {
		if it.ID == "bee.png" {
			bee = it.Caption
		}
	}
	assert.Equal(t, "a honey bee", bee)
	assert.Zero(t, a.bus.Count(eventbus.EventFilesChanged))

	saved := a.bus.EventsOf(eventbus.EventCaptionSaved)
	require.Len(t, saved, 1)
	assert.Equal(t, "bee.png", saved[0].Payload.(eventbus.CaptionSavedPayload).ItemID)
}

func TestSaveCaptionUnknownItem(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)

	assert.Error(t, a.SaveCaption("ghost.png", "boo"))
}

func TestStartCaptioningRequiresLoadedModel(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)

	err := a.StartCaptioning()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model loaded")
}

func TestLoadModelAndCaption(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)

	a.LoadModel("builtin")
	a.Queue.Wait()
	require.True(t, a.assistant.IsLoaded())

	// the loaded checkpoint is remembered
	assert.Equal(t, "builtin", config.LoadPrefs(a.Config().DataDir).LastModelPath)

	a.Selection.SelectAll()
	a.assistant.Script(filepath.Join(a.imageDir, "bee.png"), "a striped bee")
	a.bus.Reset()

	require.NoError(t, a.StartCaptioning())
	a.Queue.Wait()

	data, err := os.ReadFile(filepath.Join(a.imageDir, "bee.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a striped bee", string(data))

	data, err = os.ReadFile(filepath.Join(a.imageDir, "cow.txt"))
	require.NoError(t, err)
	assert.Equal(t, "an image of cow", string(data))

	assert.Equal(t, 3, a.bus.Count(eventbus.EventRefreshThumbnail))

	done := a.bus.EventsOf(eventbus.EventQueueFinished)
	require.Len(t, done, 1)
	summary := done[0].Payload.(eventbus.QueueFinishedPayload)
	require.Len(t, summary.Tasks, 1)
	assert.Equal(t, 3, summary.Tasks[0].Success)
}

func TestModelAutoloadsOnNextProjectOpen(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, config.SavePrefs(a.Config().DataDir, config.Prefs{LastModelPath: "builtin"}))

	a.openProject(t)
	a.Queue.Wait()

	assert.True(t, a.assistant.IsLoaded())
}

func TestFilterDrivesSelectionOrder(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)

	a.State.SetSearchOptions(appstate.SearchOptions{Term: "bee"})

	// the filtered-out item can no longer be clicked
	a.Selection.HandleClick("ant.png", 0)
	assert.Equal(t, []string{"ant.png"}, a.State.CheckedIDs())

	a.Selection.HandleClick("bee.png", 0)
	assert.Equal(t, []string{"bee.png"}, a.State.CheckedIDs())
	assert.Equal(t, "bee.png", a.State.ActiveID())
}

func TestApplyPromptType(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)

	a.Selection.SelectAll()
	a.ApplyPromptType("Tags")

	for _, it := range a.State.Files() {
		assert.Equal(t, "Tags", it.PromptType)
	}
}

func TestRuntimeRunJobQueuesAndNotifies(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)

	rt := a.Runtime()
	rt.RunJobOnce("Export CSV", func(ctx context.Context) error { return nil })

	assert.Equal(t, 1, a.Queue.PendingCount())

	notices := a.Notices.All()
	require.NotEmpty(t, notices)
	last := notices[len(notices)-1]
	assert.Equal(t, notify.LevelInfo, last.Level)
	assert.Equal(t, "Task Queued", last.Title)
}

func TestRescanSourcePicksUpNewImages(t *testing.T) {
	a := newTestApp(t)
	a.openProject(t)

	require.NoError(t, os.WriteFile(filepath.Join(a.imageDir, "dog.png"), []byte("img"), 0o644))
	a.RescanSource()

	assert.Len(t, a.State.Files(), 4)
}
