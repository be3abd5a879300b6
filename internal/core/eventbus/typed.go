package eventbus

// Typed Publish/Subscribe pairs for every event in Events. The generic
// Subscribe remains available for components that key handlers dynamically.

func (bus *EventBus) PublishFilesChanged(p FilesChangedPayload) { bus.Publish(EventFilesChanged, p) }

// SubscribeFilesChanged registers a handler for the complete item list.
func (bus *EventBus) SubscribeFilesChanged(fn func(FilesChangedPayload)) {
	bus.Subscribe(EventFilesChanged, func(v any) {
		if p, ok := v.(FilesChangedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishFilterChanged(p FilterChangedPayload) { bus.Publish(EventFilterChanged, p) }

func (bus *EventBus) SubscribeFilterChanged(fn func(FilterChangedPayload)) {
	bus.Subscribe(EventFilterChanged, func(v any) {
		if p, ok := v.(FilterChangedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishSelectionChanged(p SelectionChangedPayload) {
	bus.Publish(EventSelectionChanged, p)
}

func (bus *EventBus) SubscribeSelectionChanged(fn func(SelectionChangedPayload)) {
	bus.Subscribe(EventSelectionChanged, func(v any) {
		if p, ok := v.(SelectionChangedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishActiveItemChanged(p ActiveItemChangedPayload) {
	bus.Publish(EventActiveItemChanged, p)
}

func (bus *EventBus) SubscribeActiveItemChanged(fn func(ActiveItemChangedPayload)) {
	bus.Subscribe(EventActiveItemChanged, func(v any) {
		if p, ok := v.(ActiveItemChangedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishStatusChanged(p StatusChangedPayload) { bus.Publish(EventStatusChanged, p) }

func (bus *EventBus) SubscribeStatusChanged(fn func(StatusChangedPayload)) {
	bus.Subscribe(EventStatusChanged, func(v any) {
		if p, ok := v.(StatusChangedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishProgressChanged(p ProgressChangedPayload) {
	bus.Publish(EventProgressChanged, p)
}

func (bus *EventBus) SubscribeProgressChanged(fn func(ProgressChangedPayload)) {
	bus.Subscribe(EventProgressChanged, func(v any) {
		if p, ok := v.(ProgressChangedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishQueueUpdated(p QueueUpdatedPayload) { bus.Publish(EventQueueUpdated, p) }

func (bus *EventBus) SubscribeQueueUpdated(fn func(QueueUpdatedPayload)) {
	bus.Subscribe(EventQueueUpdated, func(v any) {
		if p, ok := v.(QueueUpdatedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishQueueStarted(p QueueStartedPayload) { bus.Publish(EventQueueStarted, p) }

func (bus *EventBus) SubscribeQueueStarted(fn func(QueueStartedPayload)) {
	bus.Subscribe(EventQueueStarted, func(v any) {
		if p, ok := v.(QueueStartedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishQueuePaused(p QueuePausedPayload) { bus.Publish(EventQueuePaused, p) }

func (bus *EventBus) SubscribeQueuePaused(fn func(QueuePausedPayload)) {
	bus.Subscribe(EventQueuePaused, func(v any) {
		if p, ok := v.(QueuePausedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishQueueResumed(p QueueResumedPayload) { bus.Publish(EventQueueResumed, p) }

func (bus *EventBus) SubscribeQueueResumed(fn func(QueueResumedPayload)) {
	bus.Subscribe(EventQueueResumed, func(v any) {
		if p, ok := v.(QueueResumedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishQueueFinished(p QueueFinishedPayload) { bus.Publish(EventQueueFinished, p) }

func (bus *EventBus) SubscribeQueueFinished(fn func(QueueFinishedPayload)) {
	bus.Subscribe(EventQueueFinished, func(v any) {
		if p, ok := v.(QueueFinishedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishProjectLoaded(p ProjectLoadedPayload) { bus.Publish(EventProjectLoaded, p) }

func (bus *EventBus) SubscribeProjectLoaded(fn func(ProjectLoadedPayload)) {
	bus.Subscribe(EventProjectLoaded, func(v any) {
		if p, ok := v.(ProjectLoadedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishCaptionSaved(p CaptionSavedPayload) { bus.Publish(EventCaptionSaved, p) }

func (bus *EventBus) SubscribeCaptionSaved(fn func(CaptionSavedPayload)) {
	bus.Subscribe(EventCaptionSaved, func(v any) {
		if p, ok := v.(CaptionSavedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishRefreshThumbnail(p RefreshThumbnailPayload) {
	bus.Publish(EventRefreshThumbnail, p)
}

func (bus *EventBus) SubscribeRefreshThumbnail(fn func(RefreshThumbnailPayload)) {
	bus.Subscribe(EventRefreshThumbnail, func(v any) {
		if p, ok := v.(RefreshThumbnailPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.Publish(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.Subscribe(EventNotificationPublished, func(v any) {
		if p, ok := v.(NotificationPublishedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishSourceChanged(p SourceChangedPayload) { bus.Publish(EventSourceChanged, p) }

func (bus *EventBus) SubscribeSourceChanged(fn func(SourceChangedPayload)) {
	bus.Subscribe(EventSourceChanged, func(v any) {
		if p, ok := v.(SourceChangedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishSetChecked(p SetCheckedPayload) { bus.Publish(EventSetChecked, p) }

func (bus *EventBus) SubscribeSetChecked(fn func(SetCheckedPayload)) {
	bus.Subscribe(EventSetChecked, func(v any) {
		if p, ok := v.(SetCheckedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) PublishSetActive(p SetActivePayload) { bus.Publish(EventSetActive, p) }

func (bus *EventBus) SubscribeSetActive(fn func(SetActivePayload)) {
	bus.Subscribe(EventSetActive, func(v any) {
		if p, ok := v.(SetActivePayload); ok {
			fn(p)
		}
	})
}
