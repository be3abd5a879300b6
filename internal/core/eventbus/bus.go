// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within annoforge.
//
// Dispatch is synchronous: Publish invokes every handler on the caller's
// goroutine, in registration order. A handler that panics is recovered and
// logged; it neither reaches the publisher nor prevents the remaining
// handlers from running. Handlers that touch UI state must marshal back to
// the foreground loop themselves.
package eventbus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/logging"
)

// Event identifies a topic on the bus. Topics need no pre-declaration;
// publishing to a topic with no subscribers is a no-op.
type Event string

// EventBus fans events out to subscribed handlers.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[Event][]func(any)
	hooks    hooks
	log      zerolog.Logger
}

// New creates an empty EventBus.
func New() *EventBus {
	return &EventBus{
		handlers: make(map[Event][]func(any)),
		log:      logging.Component("eventbus"),
	}
}

// Subscribe registers a handler for the given event. Handlers for the same
// event run in registration order.
func (bus *EventBus) Subscribe(event Event, handler func(payload any)) {
	bus.mu.Lock()
	bus.handlers[event] = append(bus.handlers[event], handler)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

// Publish delivers payload to every handler subscribed to event,
// synchronously and in registration order.
func (bus *EventBus) Publish(event Event, payload any) {
	bus.mu.RLock()
	targets := make([]func(any), len(bus.handlers[event]))
	copy(targets, bus.handlers[event])
	bus.mu.RUnlock()

	for _, handler := range targets {
		bus.dispatch(event, payload, handler)
	}
	bus.runOnPublish(event, payload)
}

func (bus *EventBus) dispatch(event Event, payload any, handler func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.log.Error().
				Str("event", string(event)).
				Interface("panic", r).
				Msg("event handler panicked")
			bus.runOnPanic(event, payload, r)
		}
	}()
	handler(payload)
}

// SubscriberCount returns the number of handlers registered for event.
func (bus *EventBus) SubscriberCount(event Event) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.handlers[event])
}
