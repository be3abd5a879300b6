package eventbus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/eventbus/testbus"
)

func TestPublish_InvokesHandlersInRegistrationOrder(t *testing.T) {
	bus := eventbus.New()

	var order []int
	bus.Subscribe("test.topic", func(any) { order = append(order, 1) })
	bus.Subscribe("test.topic", func(any) { order = append(order, 2) })
	bus.Subscribe("test.topic", func(any) { order = append(order, 3) })

	bus.Publish("test.topic", nil)

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPublish_NoSubscribersIsNoOp(t *testing.T) {
	bus := eventbus.New()
	assert.NotPanics(t, func() {
		bus.Publish("never.subscribed", "payload")
	})
}

func TestPublish_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := eventbus.New()

	var reached bool
	bus.Subscribe("test.topic", func(any) { panic("boom") })
	bus.Subscribe("test.topic", func(any) { reached = true })

	var panicked []eventbus.Event
	bus.OnPanic(func(e eventbus.Event, _, _ any) { panicked = append(panicked, e) })

	assert.NotPanics(t, func() { bus.Publish("test.topic", nil) })
	assert.True(t, reached, "handler after the panicking one must still run")
	assert.Equal(t, []eventbus.Event{"test.topic"}, panicked)
}

func TestPublish_PayloadDeliveredToAllHandlers(t *testing.T) {
	bus := eventbus.New()

	var got []any
	bus.Subscribe("test.topic", func(v any) { got = append(got, v) })
	bus.Subscribe("test.topic", func(v any) { got = append(got, v) })

	bus.Publish("test.topic", 42)

	require.Len(t, got, 2)
	assert.Equal(t, 42, got[0])
	assert.Equal(t, 42, got[1])
}

func TestTypedWrappers_RoundTrip(t *testing.T) {
	bus := eventbus.New()

	var got eventbus.StatusChangedPayload
	bus.SubscribeStatusChanged(func(p eventbus.StatusChangedPayload) { got = p })

	bus.PublishStatusChanged(eventbus.StatusChangedPayload{Message: "Ready"})

	assert.Equal(t, "Ready", got.Message)
}

func TestTypedWrappers_WrongPayloadTypeIgnored(t *testing.T) {
	bus := eventbus.New()

	called := false
	bus.SubscribeStatusChanged(func(eventbus.StatusChangedPayload) { called = true })

	// Raw publish with a mismatched payload must not reach the typed handler.
	bus.Publish(eventbus.EventStatusChanged, 123)

	assert.False(t, called)
}

func TestTestbus_RecordsAllTraffic(t *testing.T) {
	tb := testbus.New(t)

	tb.PublishStatusChanged(eventbus.StatusChangedPayload{Message: "a"})
	tb.PublishProgressChanged(eventbus.ProgressChangedPayload{Percent: 50})
	tb.PublishStatusChanged(eventbus.StatusChangedPayload{Message: "b"})

	assert.Equal(t, 2, tb.Count(eventbus.EventStatusChanged))
	assert.Equal(t, 1, tb.Count(eventbus.EventProgressChanged))

	events := tb.EventsOf(eventbus.EventStatusChanged)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Payload.(eventbus.StatusChangedPayload).Message)
	assert.Equal(t, "b", events[1].Payload.(eventbus.StatusChangedPayload).Message)
}
