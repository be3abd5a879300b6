// Package selection turns raw item clicks into selection intent. It tracks
// the visible item order, the checked set, the active item, and the range
// anchor, and publishes intent events for the state store to apply.
package selection

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/logging"
)

// Mod is a bitmask of modifier keys held during a click.
type Mod uint8

const (
	// ModShift extends the selection from the anchor to the clicked item.
	ModShift Mod = 1 << iota
	// ModCtrl toggles the clicked item without touching the rest.
	ModCtrl
)

// Model interprets clicks against the current visible order.
type Model struct {
	bus *eventbus.EventBus
	log zerolog.Logger

	mu      sync.Mutex
	order   []string
	checked map[string]struct{}
	active  string
	anchor  string
}

// New creates an empty selection model publishing intent events to bus.
func New(bus *eventbus.EventBus) *Model {
	return &Model{
		bus:     bus,
		log:     logging.Component("selection"),
		checked: map[string]struct{}{},
	}
}

// HandleClick applies a click on id with the given modifiers. A plain click
// selects only the clicked item. Ctrl toggles it. Shift selects the range
// between the anchor and the clicked item; when the anchor is gone from the
// visible order the click degrades to a plain one. Every click makes the
// clicked item active and the new anchor.
func (m *Model) HandleClick(id string, mods Mod) {
	m.mu.Lock()
	if !slices.Contains(m.order, id) {
		m.mu.Unlock()
		m.log.Warn().Str("id", id).Msg("click on item outside visible order")
		return
	}

	switch {
	case mods&ModShift != 0:
		from := slices.Index(m.order, m.anchor)
		to := slices.Index(m.order, id)
		if from == -1 {
			m.checked = map[string]struct{}{id: {}}
			break
		}
		if from > to {
			from, to = to, from
		}
		m.checked = map[string]struct{}{}
		for _, rid := range m.order[from : to+1] {
			m.checked[rid] = struct{}{}
		}
	case mods&ModCtrl != 0:
		if _, ok := m.checked[id]; ok {
			delete(m.checked, id)
		} else {
			m.checked[id] = struct{}{}
		}
	default:
		m.checked = map[string]struct{}{id: {}}
	}

	m.anchor = id
	activeChanged := m.active != id
	m.active = id
	checked := m.checkedSorted()
	m.mu.Unlock()

	m.bus.PublishSetChecked(eventbus.SetCheckedPayload{IDs: checked})
	if activeChanged {
		m.bus.PublishSetActive(eventbus.SetActivePayload{ID: id})
	}
}

// UpdateItemOrder replaces the visible order, typically after a filter
// change. Checked items no longer visible are dropped; a vanished active
// item or anchor is cleared. State is adjusted silently, without intent
// events, because the state store prunes on its own side.
func (m *Model) UpdateItemOrder(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = slices.Clone(ids)
	visible := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		visible[id] = struct{}{}
	}
	for id := range m.checked {
		if _, ok := visible[id]; !ok {
			delete(m.checked, id)
		}
	}
	if _, ok := visible[m.active]; !ok {
		m.active = ""
	}
	if _, ok := visible[m.anchor]; !ok {
		m.anchor = ""
	}
}

// SelectAll checks every visible item and makes the last one active.
func (m *Model) SelectAll() {
	m.mu.Lock()
	if len(m.order) == 0 {
		m.mu.Unlock()
		return
	}
	m.checked = make(map[string]struct{}, len(m.order))
	for _, id := range m.order {
		m.checked[id] = struct{}{}
	}
	last := m.order[len(m.order)-1]
	activeChanged := m.active != last
	m.active = last
	m.anchor = last
	checked := m.checkedSorted()
	m.mu.Unlock()

	m.bus.PublishSetChecked(eventbus.SetCheckedPayload{IDs: checked})
	if activeChanged {
		m.bus.PublishSetActive(eventbus.SetActivePayload{ID: last})
	}
}

// Clear empties the checked set and drops the active item and anchor.
func (m *Model) Clear() {
	m.mu.Lock()
	m.checked = map[string]struct{}{}
	activeChanged := m.active != ""
	m.active = ""
	m.anchor = ""
	m.mu.Unlock()

	m.bus.PublishSetChecked(eventbus.SetCheckedPayload{IDs: []string{}})
	if activeChanged {
		m.bus.PublishSetActive(eventbus.SetActivePayload{ID: ""})
	}
}

// AddToSelection checks the given items in addition to the current set.
// The active item and anchor are untouched.
func (m *Model) AddToSelection(ids []string) {
	m.mu.Lock()
	for _, id := range ids {
		m.checked[id] = struct{}{}
	}
	checked := m.checkedSorted()
	m.mu.Unlock()

	m.bus.PublishSetChecked(eventbus.SetCheckedPayload{IDs: checked})
}

// RemoveFromSelection unchecks the given items.
func (m *Model) RemoveFromSelection(ids []string) {
	m.mu.Lock()
	for _, id := range ids {
		delete(m.checked, id)
	}
	checked := m.checkedSorted()
	m.mu.Unlock()

	m.bus.PublishSetChecked(eventbus.SetCheckedPayload{IDs: checked})
}

// IsChecked reports whether id is currently checked.
func (m *Model) IsChecked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.checked[id]
	return ok
}

// ActiveID returns the focused item identifier, or empty when none.
func (m *Model) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// CheckedIDs returns the sorted checked-item identifiers.
func (m *Model) CheckedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkedSorted()
}

func (m *Model) checkedSorted() []string {
	ids := make([]string, 0, len(m.checked))
	for id := range m.checked {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
