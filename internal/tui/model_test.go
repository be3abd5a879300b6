package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoforge/annoforge/internal/annoforge"
	"github.com/annoforge/annoforge/internal/core/appstate"
	"github.com/annoforge/annoforge/internal/core/config"
	"github.com/annoforge/annoforge/internal/core/eventbus/testbus"
	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/notify"
	"github.com/annoforge/annoforge/internal/tasks"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	app := annoforge.New(&cfg, testbus.New(t).EventBus)
	t.Cleanup(app.Close)
	return New(app)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestParseSearch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want appstate.SearchOptions
	}{
		{name: "plain", raw: "cat", want: appstate.SearchOptions{Term: "cat"}},
		{name: "invert", raw: "!cat", want: appstate.SearchOptions{Term: "cat", Invert: true}},
		{name: "regex", raw: "re:^cat", want: appstate.SearchOptions{Term: "^cat", Regex: true}},
		{name: "invert regex", raw: "!re:^cat", want: appstate.SearchOptions{Term: "^cat", Regex: true, Invert: true}},
		{name: "empty", raw: "", want: appstate.SearchOptions{}},
		{name: "bare bang", raw: "!", want: appstate.SearchOptions{Invert: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSearch(tt.raw))
		})
	}
}

func TestFilterMsgClampsCursor(t *testing.T) {
	m := newTestModel(t)
	m.items = []item.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	m.cursor = 2

	m = update(t, m, filterMsg{files: []item.Item{{ID: "a"}}})

	assert.Equal(t, 0, m.cursor)
	assert.Len(t, m.items, 1)
}

func TestSelectionMsgRebuildsCheckedSet(t *testing.T) {
	m := newTestModel(t)
	m.checked = map[string]bool{"old": true}

	m = update(t, m, selectionMsg{checkedIDs: []string{"a", "b"}})

	assert.True(t, m.checked["a"])
	assert.True(t, m.checked["b"])
	assert.False(t, m.checked["old"])
}

func TestQueueStateTransitions(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, queueStartedMsg{})
	assert.Equal(t, tasks.StateRunning, m.queueState)

	m = update(t, m, queuePausedMsg{})
	assert.Equal(t, tasks.StatePaused, m.queueState)

	m = update(t, m, queueResumedMsg{})
	assert.Equal(t, tasks.StateRunning, m.queueState)

	m = update(t, m, queueFinishedMsg{})
	assert.Equal(t, tasks.StateIdle, m.queueState)
}

func TestToastLifecycle(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, notificationMsg{level: notify.LevelInfo, title: "Queue", message: "done"})
	assert.Equal(t, "Queue: done", m.toast)

	// a stale expiry does not clear a newer toast
	m = update(t, m, toastExpiredMsg{at: m.toastAt.Add(-time.Second)})
	assert.NotEmpty(t, m.toast)

	m = update(t, m, toastExpiredMsg{at: m.toastAt})
	assert.Empty(t, m.toast)
}

func TestRunFuncMsgExecutesClosure(t *testing.T) {
	m := newTestModel(t)

	ran := false
	update(t, m, RunOnLoop(func() { ran = true }))

	assert.True(t, ran)
}

func TestViewRendersEmptyState(t *testing.T) {
	m := newTestModel(t)
	out := m.View()

	assert.Contains(t, out, "annoforge")
	assert.Contains(t, out, "no items")
}
