package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/eventbus/testbus"
)

func newTestModel(t *testing.T, order ...string) (*Model, *testbus.Bus) {
	t.Helper()
	bus := testbus.New(t)
	m := New(bus.EventBus)
	m.UpdateItemOrder(order)
	bus.Reset()
	return m, bus
}

func lastChecked(t *testing.T, bus *testbus.Bus) []string {
	t.Helper()
	events := bus.EventsOf(eventbus.EventSetChecked)
	require.NotEmpty(t, events)
	return events[len(events)-1].Payload.(eventbus.SetCheckedPayload).IDs
}

func TestSimpleClick(t *testing.T) {
	m, bus := newTestModel(t, "a", "b", "c")

	m.HandleClick("b", 0)

	assert.Equal(t, []string{"b"}, lastChecked(t, bus))
	assert.Equal(t, "b", m.ActiveID())

	// a second plain click replaces the selection
	m.HandleClick("c", 0)
	assert.Equal(t, []string{"c"}, lastChecked(t, bus))
}

func TestCtrlClickToggles(t *testing.T) {
	m, bus := newTestModel(t, "a", "b", "c")

	m.HandleClick("a", 0)
	m.HandleClick("c", ModCtrl)
	assert.Equal(t, []string{"a", "c"}, lastChecked(t, bus))

	m.HandleClick("a", ModCtrl)
	assert.Equal(t, []string{"c"}, lastChecked(t, bus))
	// toggling off still moves focus to the clicked item
	assert.Equal(t, "a", m.ActiveID())
}

func TestShiftClickSelectsRange(t *testing.T) {
	m, bus := newTestModel(t, "a", "b", "c", "d")

	m.HandleClick("b", 0)
	m.HandleClick("d", ModShift)

	assert.Equal(t, []string{"b", "c", "d"}, lastChecked(t, bus))
	assert.Equal(t, "d", m.ActiveID())
}

func TestShiftClickBackwards(t *testing.T) {
	m, bus := newTestModel(t, "a", "b", "c", "d")

	m.HandleClick("d", 0)
	m.HandleClick("b", ModShift)

	assert.Equal(t, []string{"b", "c", "d"}, lastChecked(t, bus))
}

func TestShiftClickWithoutAnchorFallsBack(t *testing.T) {
	m, bus := newTestModel(t, "a", "b", "c")

	m.HandleClick("c", ModShift)

	assert.Equal(t, []string{"c"}, lastChecked(t, bus))
	assert.Equal(t, "c", m.ActiveID())
}

func TestShiftClickWithVanishedAnchorFallsBack(t *testing.T) {
	m, bus := newTestModel(t, "a", "b", "c")

	m.HandleClick("a", 0)
	m.UpdateItemOrder([]string{"b", "c"})
	m.HandleClick("c", ModShift)

	assert.Equal(t, []string{"c"}, lastChecked(t, bus))
}

func TestClickOutsideOrderIgnored(t *testing.T) {
	m, bus := newTestModel(t, "a", "b")

	m.HandleClick("z", 0)

	assert.Empty(t, bus.Events())
	assert.Empty(t, m.ActiveID())
}

func TestActivePublishedOnlyOnChange(t *testing.T) {
	m, bus := newTestModel(t, "a", "b")

	m.HandleClick("a", 0)
	m.HandleClick("a", ModCtrl)

	assert.Equal(t, 1, bus.Count(eventbus.EventSetActive))
	// the checked intent still fires on every click
	assert.Equal(t, 2, bus.Count(eventbus.EventSetChecked))
}

func TestUpdateItemOrderPrunes(t *testing.T) {
	m, bus := newTestModel(t, "a", "b", "c")

	m.HandleClick("a", 0)
	m.HandleClick("c", ModCtrl)
	bus.Reset()

	m.UpdateItemOrder([]string{"a", "b"})

	assert.Equal(t, []string{"a"}, m.CheckedIDs())
	// the visible-order update itself is silent
	assert.Empty(t, bus.Events())

	m.UpdateItemOrder([]string{"b"})
	assert.Empty(t, m.ActiveID())
}

func TestSelectAll(t *testing.T) {
	m, bus := newTestModel(t, "b", "a", "c")

	m.SelectAll()

	assert.Equal(t, []string{"a", "b", "c"}, lastChecked(t, bus))
	// the last visible item becomes active, not the lexicographic last
	assert.Equal(t, "c", m.ActiveID())
}

func TestSelectAllEmptyOrder(t *testing.T) {
	m, bus := newTestModel(t)

	m.SelectAll()

	assert.Empty(t, bus.Events())
}

func TestClear(t *testing.T) {
	m, bus := newTestModel(t, "a", "b")

	m.HandleClick("a", 0)
	m.SelectAll()
	bus.Reset()

	m.Clear()

	assert.Empty(t, lastChecked(t, bus))
	assert.Equal(t, 1, bus.Count(eventbus.EventSetActive))
	assert.Empty(t, m.ActiveID())
}

func TestAddAndRemoveFromSelection(t *testing.T) {
	m, bus := newTestModel(t, "a", "b", "c")

	m.HandleClick("a", 0)
	m.AddToSelection([]string{"b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, lastChecked(t, bus))
	assert.Equal(t, "a", m.ActiveID())

	m.RemoveFromSelection([]string{"b"})
	assert.Equal(t, []string{"a", "c"}, lastChecked(t, bus))
}

func TestIsChecked(t *testing.T) {
	m, _ := newTestModel(t, "a", "b")

	m.HandleClick("a", 0)

	assert.True(t, m.IsChecked("a"))
	assert.False(t, m.IsChecked("b"))
}
