package eventbus

import (
	"fmt"

	"github.com/annoforge/annoforge/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeProjectLoaded(func(p ProjectLoadedPayload) {
		r.notifyf(notify.LevelInfo, "Project", "project %q loaded", p.Name)
	})

	r.bus.SubscribeQueueFinished(func(p QueueFinishedPayload) {
		var success, failed, skipped int
		for _, t := range p.Tasks {
			success += t.Success
			failed += t.Failed
			skipped += t.Skipped
		}
		level := notify.LevelInfo
		verb := "finished"
		if p.Aborted {
			level = notify.LevelWarning
			verb = "aborted"
		}
		r.notifyf(level, "Queue", "queue %s: %d succeeded, %d failed, %d skipped",
			verb, success, failed, skipped)
	})

	r.bus.SubscribeSourceChanged(func(p SourceChangedPayload) {
		r.notifyf(notify.LevelWarning, "Source", "data source changed (%s); rescan to pick up changes", p.Op)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, title, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Title:   title,
		Message: fmt.Sprintf(format, args...),
	})
}
