package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/notify"
)

// Bus events are converted to tea messages so all view mutation happens on
// the program loop. Register the bridge before the program starts; events
// published earlier are lost.

type filesMsg struct{ files []item.Item }

type filterMsg struct{ files []item.Item }

type selectionMsg struct{ checkedIDs []string }

type activeItemMsg struct{ id string }

type statusMsg struct{ message string }

type progressMsg struct{ percent float64 }

type queueUpdatedMsg struct {
	pending int
	names   []string
}

type queueStartedMsg struct{}

type queuePausedMsg struct{}

type queueResumedMsg struct{}

type queueFinishedMsg struct{ aborted bool }

type notificationMsg struct {
	level   notify.Level
	title   string
	message string
}

type captionSavedMsg struct{ itemID string }

type refreshThumbnailMsg struct{ itemID string }

type sourceChangedMsg struct{}

// runFuncMsg carries a closure marshaled onto the program loop.
type runFuncMsg struct{ fn func() }

// RunOnLoop wraps fn for delivery through Program.Send.
func RunOnLoop(fn func()) tea.Msg {
	return runFuncMsg{fn: fn}
}

// RegisterBridge forwards bus events into the program as messages. send is
// typically Program.Send, which is safe from any goroutine.
func RegisterBridge(bus *eventbus.EventBus, send func(tea.Msg)) {
	bus.SubscribeFilesChanged(func(p eventbus.FilesChangedPayload) {
		send(filesMsg{files: p.Files})
	})
	bus.SubscribeFilterChanged(func(p eventbus.FilterChangedPayload) {
		send(filterMsg{files: p.Files})
	})
	bus.SubscribeSelectionChanged(func(p eventbus.SelectionChangedPayload) {
		send(selectionMsg{checkedIDs: p.CheckedIDs})
	})
	bus.SubscribeActiveItemChanged(func(p eventbus.ActiveItemChangedPayload) {
		send(activeItemMsg{id: p.ID})
	})
	bus.SubscribeStatusChanged(func(p eventbus.StatusChangedPayload) {
		send(statusMsg{message: p.Message})
	})
	bus.SubscribeProgressChanged(func(p eventbus.ProgressChangedPayload) {
		send(progressMsg{percent: p.Percent})
	})
	bus.SubscribeQueueUpdated(func(p eventbus.QueueUpdatedPayload) {
		send(queueUpdatedMsg{pending: p.Pending, names: p.Names})
	})
	bus.SubscribeQueueStarted(func(eventbus.QueueStartedPayload) {
		send(queueStartedMsg{})
	})
	bus.SubscribeQueuePaused(func(eventbus.QueuePausedPayload) {
		send(queuePausedMsg{})
	})
	bus.SubscribeQueueResumed(func(eventbus.QueueResumedPayload) {
		send(queueResumedMsg{})
	})
	bus.SubscribeQueueFinished(func(p eventbus.QueueFinishedPayload) {
		send(queueFinishedMsg{aborted: p.Aborted})
	})
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		send(notificationMsg{level: p.Level, title: p.Title, message: p.Message})
	})
	bus.SubscribeCaptionSaved(func(p eventbus.CaptionSavedPayload) {
		send(captionSavedMsg{itemID: p.ItemID})
	})
	bus.SubscribeRefreshThumbnail(func(p eventbus.RefreshThumbnailPayload) {
		send(refreshThumbnailMsg{itemID: p.ItemID})
	})
	bus.SubscribeSourceChanged(func(eventbus.SourceChangedPayload) {
		send(sourceChangedMsg{})
	})
}
