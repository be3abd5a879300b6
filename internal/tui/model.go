package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/annoforge/annoforge/internal/annoforge"
	"github.com/annoforge/annoforge/internal/core/appstate"
	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/notify"
	"github.com/annoforge/annoforge/internal/core/selection"
	"github.com/annoforge/annoforge/internal/tasks"
)

// toastDuration is how long a notification stays on screen.
const toastDuration = 4 * time.Second

type mode int

const (
	modeList mode = iota
	modeSearch
	modeEdit
	modeHelp
)

type toastExpiredMsg struct{ at time.Time }

// Model is the top-level Bubble Tea model.
type Model struct {
	app  *annoforge.App
	keys keyMap

	mode   mode
	width  int
	height int

	items   []item.Item
	checked map[string]bool
	active  string
	cursor  int

	status     string
	percent    float64
	queueState tasks.State
	pendingN   int

	toast      string
	toastStyle func(...string) string
	toastAt    time.Time

	search   textinput.Model
	caption  textarea.Model
	bar      progress.Model
	spin     spinner.Model
	helpView help.Model
	helpDoc  string
}

// New creates the TUI model over the application root.
func New(app *annoforge.App) Model {
	search := textinput.New()
	search.Placeholder = "filter items (prefix with re: for regex, ! to invert)"
	search.Prompt = "/ "

	caption := textarea.New()
	caption.Placeholder = "no caption"
	caption.SetHeight(4)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		app:        app,
		keys:       defaultKeyMap(),
		checked:    map[string]bool{},
		status:     "Ready",
		queueState: tasks.StateIdle,
		search:     search,
		caption:    caption,
		bar:        progress.New(progress.WithDefaultGradient()),
		spin:       spin,
		helpView:   help.New(),
		helpDoc:    renderHelp(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-4, 50)
		m.caption.SetWidth(msg.Width - 4)
		return m, nil

	case runFuncMsg:
		msg.fn()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case filterMsg:
		m.items = msg.files
		if m.cursor >= len(m.items) {
			m.cursor = max(len(m.items)-1, 0)
		}
		return m, nil

	case filesMsg:
		// membership arrives via the filtered view; nothing to do here
		return m, nil

	case selectionMsg:
		m.checked = map[string]bool{}
		for _, id := range msg.checkedIDs {
			m.checked[id] = true
		}
		return m, nil

	case activeItemMsg:
		m.active = msg.id
		m.caption.SetValue(m.activeCaption())
		return m, nil

	case captionSavedMsg, refreshThumbnailMsg:
		if m.mode != modeEdit {
			m.caption.SetValue(m.activeCaption())
		}
		return m, nil

	case statusMsg:
		m.status = msg.message
		return m, nil

	case progressMsg:
		m.percent = msg.percent
		return m, nil

	case queueUpdatedMsg:
		m.pendingN = msg.pending
		return m, nil

	case queueStartedMsg, queueResumedMsg:
		m.queueState = tasks.StateRunning
		return m, nil

	case queuePausedMsg:
		m.queueState = tasks.StatePaused
		return m, nil

	case queueFinishedMsg:
		m.queueState = tasks.StateIdle
		return m, nil

	case sourceChangedMsg:
		// the router raises the user-facing warning; nothing to redraw
		return m, nil

	case notificationMsg:
		return m.showToast(msg)

	case toastExpiredMsg:
		if msg.at.Equal(m.toastAt) {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeEdit:
		return m.handleEditKey(msg)
	case modeHelp:
		m.mode = modeList
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		m.clickCursor(0)
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.clickCursor(selection.ModCtrl)
		return m, nil

	case key.Matches(msg, m.keys.Range):
		m.clickCursor(selection.ModShift)
		return m, nil

	case key.Matches(msg, m.keys.SelectAll):
		m.app.Selection.SelectAll()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.app.Selection.Clear()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		if m.active == "" {
			return m, nil
		}
		m.mode = modeEdit
		m.caption.Focus()
		return m, textarea.Blink

	case key.Matches(msg, m.keys.Generate):
		if err := m.app.StartCaptioning(); err != nil {
			m.status = err.Error()
		}
		return m, nil

	case key.Matches(msg, m.keys.LoadModel):
		m.loadFirstModel()
		return m, nil

	case key.Matches(msg, m.keys.Run):
		m.app.Queue.Start()
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		if m.queueState == tasks.StatePaused {
			m.app.Queue.Resume()
		} else {
			m.app.Queue.Pause()
		}
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		m.app.Queue.Stop()
		return m, nil

	case key.Matches(msg, m.keys.Rescan):
		m.app.RescanSource()
		return m, nil
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeList
		m.search.Blur()
		m.search.SetValue("")
		m.app.State.SetSearchOptions(appstate.SearchOptions{})
		return m, nil
	case tea.KeyEnter:
		m.mode = modeList
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.app.State.SetSearchOptions(parseSearch(m.search.Value()))
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEscape:
		m.mode = modeList
		m.caption.Blur()
		m.caption.SetValue(m.activeCaption())
		return m, nil
	case msg.Type == tea.KeyCtrlS:
		if err := m.app.SaveCaption(m.active, m.caption.Value()); err != nil {
			m.status = err.Error()
		}
		m.mode = modeList
		m.caption.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.caption, cmd = m.caption.Update(msg)
	return m, cmd
}

func (m *Model) clickCursor(mods selection.Mod) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return
	}
	m.app.Selection.HandleClick(m.items[m.cursor].ID, mods)
}

func (m *Model) loadFirstModel() {
	assistant, ok := m.app.Registry.PrimaryAssistant()
	if !ok {
		m.status = "no model assistant registered"
		return
	}
	paths, err := assistant.AvailablePaths()
	if err != nil || len(paths) == 0 {
		m.status = "no model checkpoints found"
		return
	}
	m.app.LoadModel(paths[0])
}

func (m Model) showToast(msg notificationMsg) (tea.Model, tea.Cmd) {
	style := toastInfoStyle.Render
	switch msg.level {
	case notify.LevelWarning:
		style = toastWarnStyle.Render
	case notify.LevelError:
		style = toastErrorStyle.Render
	}

	m.toast = fmt.Sprintf("%s: %s", msg.title, msg.message)
	m.toastStyle = style
	m.toastAt = time.Now()

	at := m.toastAt
	return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{at: at}
	})
}

func (m Model) activeCaption() string {
	if m.active == "" {
		return ""
	}
	if it, ok := m.app.Library.ByID(m.active); ok {
		return it.Caption
	}
	return ""
}

// parseSearch maps the raw input to search options: a "!" prefix inverts,
// a "re:" prefix switches to regex matching.
func parseSearch(raw string) appstate.SearchOptions {
	opts := appstate.SearchOptions{}
	if len(raw) > 0 && raw[0] == '!' {
		opts.Invert = true
		raw = raw[1:]
	}
	if len(raw) >= 3 && raw[:3] == "re:" {
		opts.Regex = true
		raw = raw[3:]
	}
	opts.Term = raw
	return opts
}
