package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Toggle    key.Binding
	Range     key.Binding
	SelectAll key.Binding
	Clear     key.Binding
	Search    key.Binding
	Edit      key.Binding
	Generate  key.Binding
	LoadModel key.Binding
	Run       key.Binding
	Pause     key.Binding
	Stop      key.Binding
	Rescan    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Range:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "select range")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear selection")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit caption")),
		Generate:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate captions")),
		LoadModel: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load model")),
		Run:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run queue")),
		Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		Stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop queue")),
		Rescan:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rescan source")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Generate, k.Run, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Toggle, k.Range},
		{k.SelectAll, k.Clear, k.Search, k.Edit, k.Rescan},
		{k.Generate, k.LoadModel, k.Run, k.Pause, k.Stop},
		{k.Help, k.Quit},
	}
}
