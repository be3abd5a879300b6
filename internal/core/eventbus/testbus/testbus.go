// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"sync"
	"testing"

	"github.com/annoforge/annoforge/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus wraps a real EventBus with event recording for tests. Recording uses
// the OnPublish hook, so every topic is captured without per-event
// subscriptions.
type Bus struct {
	*eventbus.EventBus

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a recording bus. Dispatch is synchronous, so recorded events
// are visible as soon as the publishing call returns.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{EventBus: eventbus.New()}
	tb.OnPublish(func(e eventbus.Event, payload any) {
		tb.mu.Lock()
		tb.events = append(tb.events, RecordedEvent{Event: e, Payload: payload})
		tb.mu.Unlock()
	})
	return tb
}

// Events returns all recorded events in publish order.
func (b *Bus) Events() []RecordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// EventsOf returns the recorded events matching the given name.
func (b *Bus) EventsOf(event eventbus.Event) []RecordedEvent {
	var out []RecordedEvent
	for _, e := range b.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many times event was published.
func (b *Bus) Count(event eventbus.Event) int {
	return len(b.EventsOf(event))
}

// Reset discards all recorded events.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
