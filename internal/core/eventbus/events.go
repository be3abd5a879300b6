package eventbus

import (
	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/notify"
)

// Event names for all typed payloads.
const (
	EventActiveItemChanged     Event = "state.active-item-changed"
	EventCaptionSaved          Event = "data.caption-saved"
	EventFilesChanged          Event = "state.files-changed"
	EventFilterChanged         Event = "state.filter-changed"
	EventNotificationPublished Event = "notification.published"
	EventProgressChanged       Event = "state.progress-changed"
	EventProjectLoaded         Event = "project.loaded"
	EventQueueFinished         Event = "queue.finished"
	EventQueuePaused           Event = "queue.paused"
	EventQueueResumed          Event = "queue.resumed"
	EventQueueStarted          Event = "queue.started"
	EventQueueUpdated          Event = "queue.updated"
	EventRefreshThumbnail      Event = "ui.refresh-thumbnail"
	EventSelectionChanged      Event = "state.selection-changed"
	EventSetActive             Event = "selection.set-active"
	EventSetChecked            Event = "selection.set-checked"
	EventSourceChanged         Event = "source.changed"
	EventStatusChanged         Event = "state.status-changed"
)

// Events maps every event name to a zero value of its payload struct.
// Keep list sorted A-Z.
var Events = map[Event]any{
	EventActiveItemChanged:     ActiveItemChangedPayload{},
	EventCaptionSaved:          CaptionSavedPayload{},
	EventFilesChanged:          FilesChangedPayload{},
	EventFilterChanged:         FilterChangedPayload{},
	EventNotificationPublished: NotificationPublishedPayload{},
	EventProgressChanged:       ProgressChangedPayload{},
	EventProjectLoaded:         ProjectLoadedPayload{},
	EventQueueFinished:         QueueFinishedPayload{},
	EventQueuePaused:           QueuePausedPayload{},
	EventQueueResumed:          QueueResumedPayload{},
	EventQueueStarted:          QueueStartedPayload{},
	EventQueueUpdated:          QueueUpdatedPayload{},
	EventRefreshThumbnail:      RefreshThumbnailPayload{},
	EventSelectionChanged:      SelectionChangedPayload{},
	EventSetActive:             SetActivePayload{},
	EventSetChecked:            SetCheckedPayload{},
	EventSourceChanged:         SourceChangedPayload{},
	EventStatusChanged:         StatusChangedPayload{},
}

// FilesChangedPayload carries the complete, unfiltered item list. Consumers
// that build widgets per item rebuild from this event.
type FilesChangedPayload struct {
	Files []item.Item
}

// FilterChangedPayload carries the currently filtered view. Published after
// FilesChanged when the master list changes, and alone when only the filter
// options change.
type FilterChangedPayload struct {
	Files []item.Item
}

// SelectionChangedPayload is emitted when the checked-item set changes.
// IDs are sorted for stable comparison.
type SelectionChangedPayload struct {
	CheckedIDs []string
}

// ActiveItemChangedPayload is emitted when the focused item changes.
// An empty ID means no item is active.
type ActiveItemChangedPayload struct {
	ID string
}

// StatusChangedPayload updates the status bar text.
type StatusChangedPayload struct {
	Message string
}

// ProgressChangedPayload updates the progress display.
// Percent is 0-100; a negative value means indeterminate.
type ProgressChangedPayload struct {
	Percent float64
}

// QueueUpdatedPayload is emitted whenever the pending task list changes.
type QueueUpdatedPayload struct {
	Pending int
	Names   []string
}

// QueueStartedPayload is emitted when the queue worker launches.
type QueueStartedPayload struct{}

// QueuePausedPayload is emitted when the queue is paused.
type QueuePausedPayload struct{}

// QueueResumedPayload is emitted when a paused queue resumes.
type QueueResumedPayload struct{}

// TaskSummary carries the per-item result counts of one executed task.
type TaskSummary struct {
	ID      string
	Name    string
	Success int
	Failed  int
	Skipped int
}

// QueueFinishedPayload is emitted once per queue run, after the pending list
// is exhausted or aborted.
type QueueFinishedPayload struct {
	Aborted bool
	Tasks   []TaskSummary
}

// ProjectLoadedPayload carries the parsed project descriptor.
type ProjectLoadedPayload struct {
	Name       string
	Version    int
	DataSource string
	DBPath     string
	Path       string
}

// CaptionSavedPayload is emitted after an item's caption file is rewritten.
type CaptionSavedPayload struct {
	ItemID string
}

// RefreshThumbnailPayload asks the UI to reload one item's thumbnail.
type RefreshThumbnailPayload struct {
	ItemID string
}

// NotificationPublishedPayload surfaces a user-facing notification.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Title   string
	Message string
}

// SourceChangedPayload is emitted when the data source directory gains or
// loses an image file outside of a scan.
type SourceChangedPayload struct {
	Path string
	Op   string
}

// SetCheckedPayload requests the state store replace the checked set.
// Published by the selection model; the app root forwards it.
type SetCheckedPayload struct {
	IDs []string
}

// SetActivePayload requests the state store change the active item.
type SetActivePayload struct {
	ID string
}
