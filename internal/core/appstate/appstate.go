// Package appstate is the single source of truth for the dynamic state of
// the application: the item list, the search filter, the checked set, and
// the active item. Every mutation goes through an explicit setter that
// compares, stores, and publishes the corresponding change event.
package appstate

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/logging"
)

// SearchOptions controls the item filter.
type SearchOptions struct {
	Term   string
	Regex  bool
	Invert bool
}

// Store holds the application state and publishes change events on mutation.
type Store struct {
	bus *eventbus.EventBus
	log zerolog.Logger

	mu      sync.RWMutex
	files   []item.Item
	opts    SearchOptions
	checked []string
	active  string
}

// New creates an empty state store publishing to bus.
func New(bus *eventbus.EventBus) *Store {
	return &Store{
		bus: bus,
		log: logging.Component("appstate"),
	}
}

// SetFiles replaces the master item list. Unlike the other setters it always
// publishes, even when the new list equals the old one: consumers rebuild
// their widgets on this event. The full list is published first, then the
// filtered view. Checked and active references to items no longer present
// are pruned silently.
func (s *Store) SetFiles(files []item.Item) {
	s.mu.Lock()
	s.files = slices.Clone(files)

	present := make(map[string]struct{}, len(files))
	for _, it := range files {
		present[it.ID] = struct{}{}
	}
	s.checked = slices.DeleteFunc(s.checked, func(id string) bool {
		_, ok := present[id]
		return !ok
	})
	if _, ok := present[s.active]; !ok {
		s.active = ""
	}

	full := slices.Clone(s.files)
	filtered := filter(s.files, s.opts)
	s.mu.Unlock()

	s.bus.PublishFilesChanged(eventbus.FilesChangedPayload{Files: full})
	s.bus.PublishFilterChanged(eventbus.FilterChangedPayload{Files: filtered})
}

// SetSearchOptions updates the filter and publishes the new filtered view,
// unless the options are unchanged.
func (s *Store) SetSearchOptions(opts SearchOptions) {
	s.mu.Lock()
	if s.opts == opts {
		s.mu.Unlock()
		return
	}
	s.opts = opts
	filtered := filter(s.files, s.opts)
	s.mu.Unlock()

	s.bus.PublishFilterChanged(eventbus.FilterChangedPayload{Files: filtered})
}

// SetCheckedIDs replaces the checked set. IDs are stored sorted so that
// comparisons are order-independent; no event fires when the set is
// unchanged.
func (s *Store) SetCheckedIDs(ids []string) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	s.mu.Lock()
	if slices.Equal(s.checked, sorted) {
		s.mu.Unlock()
		return
	}
	s.checked = sorted
	payload := slices.Clone(sorted)
	s.mu.Unlock()

	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{CheckedIDs: payload})
}

// SetActiveID changes the focused item; empty means none. No event fires
// when the value is unchanged.
func (s *Store) SetActiveID(id string) {
	s.mu.Lock()
	if s.active == id {
		s.mu.Unlock()
		return
	}
	s.active = id
	s.mu.Unlock()

	s.bus.PublishActiveItemChanged(eventbus.ActiveItemChangedPayload{ID: id})
}

// RefreshItems replaces stored snapshots for matching identifiers in
// place. The list membership and order are untouched and no event fires;
// callers announce the underlying change themselves.
func (s *Store) RefreshItems(items []item.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]item.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for i, it := range s.files {
		if updated, ok := byID[it.ID]; ok {
			s.files[i] = updated
		}
	}
}

// Files returns a copy of the master item list.
func (s *Store) Files() []item.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.files)
}

// Filtered returns the master list filtered by the current search options.
func (s *Store) Filtered() []item.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.files, s.opts)
}

// SearchOptions returns the current filter options.
func (s *Store) SearchOptions() SearchOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// CheckedIDs returns the sorted checked-item identifiers.
func (s *Store) CheckedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.checked)
}

// ActiveID returns the focused item identifier, or empty when none.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}
