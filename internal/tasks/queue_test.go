package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/eventbus/testbus"
	"github.com/annoforge/annoforge/internal/core/item"
)

func newTestQueue(t *testing.T) (*Queue, *testbus.Bus) {
	t.Helper()
	bus := testbus.New(t)
	return NewQueue(bus.EventBus, time.Millisecond), bus
}

func itemsN(n int) []item.Item {
	items := make([]item.Item, n)
	for i := range items {
		items[i] = item.Item{ID: string(rune('a' + i))}
	}
	return items
}

func succeed(context.Context, item.Item) (Result, error) {
	return ResultSuccess, nil
}

func finished(t *testing.T, bus *testbus.Bus) eventbus.QueueFinishedPayload {
	t.Helper()
	events := bus.EventsOf(eventbus.EventQueueFinished)
	require.Len(t, events, 1)
	return events[0].Payload.(eventbus.QueueFinishedPayload)
}

func TestRunTasksToCompletion(t *testing.T) {
	q, bus := newTestQueue(t)

	var ran atomic.Int32
	each := func(ctx context.Context, it item.Item) (Result, error) {
		ran.Add(1)
		return ResultSuccess, nil
	}
	q.Add(NewTask("first", itemsN(2), each))
	q.Add(NewTask("second", itemsN(3), each))

	q.Start()
	q.Wait()

	assert.Equal(t, int32(5), ran.Load())
	assert.Equal(t, StateIdle, q.State())
	assert.Zero(t, q.PendingCount())

	done := finished(t, bus)
	assert.False(t, done.Aborted)
	require.Len(t, done.Tasks, 2)
	assert.Equal(t, "first", done.Tasks[0].Name)
	assert.Equal(t, 2, done.Tasks[0].Success)
	assert.Equal(t, 3, done.Tasks[1].Success)
}

func TestOutcomeCounting(t *testing.T) {
	q, bus := newTestQueue(t)

	outcomes := []func() (Result, error){
		func() (Result, error) { return ResultSuccess, nil },
		func() (Result, error) { return ResultSkipped, nil },
		func() (Result, error) { return ResultFailure, errors.New("boom") },
		func() (Result, error) { panic("very boom") },
	}
	var i atomic.Int32
	each := func(ctx context.Context, it item.Item) (Result, error) {
		return outcomes[i.Add(1)-1]()
	}
	q.Add(NewTask("mixed", itemsN(4), each))

	q.Start()
	q.Wait()

	done := finished(t, bus)
	assert.False(t, done.Aborted)
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, 1, done.Tasks[0].Success)
	assert.Equal(t, 2, done.Tasks[0].Failed)
	assert.Equal(t, 1, done.Tasks[0].Skipped)
}

func TestFailuresDoNotStopTheRun(t *testing.T) {
	q, bus := newTestQueue(t)

	each := func(ctx context.Context, it item.Item) (Result, error) {
		return ResultFailure, errors.New("always")
	}
	q.Add(NewTask("doomed", itemsN(3), each))
	q.Add(NewTask("also doomed", itemsN(2), each))

	q.Start()
	q.Wait()

	done := finished(t, bus)
	require.Len(t, done.Tasks, 2)
	assert.Equal(t, 3, done.Tasks[0].Failed)
	assert.Equal(t, 2, done.Tasks[1].Failed)
	assert.Equal(t, StateIdle, q.State())
	assert.Zero(t, q.PendingCount())
}

func TestProgressAndStatus(t *testing.T) {
	q, bus := newTestQueue(t)

	q.Add(NewTask("caption", itemsN(2), succeed))
	q.Start()
	q.Wait()

	var percents []float64
	for _, e := range bus.EventsOf(eventbus.EventProgressChanged) {
		percents = append(percents, e.Payload.(eventbus.ProgressChangedPayload).Percent)
	}
	// per-item progress, then the reset on finish
	assert.Equal(t, []float64{50, 100, 0}, percents)

	statuses := bus.EventsOf(eventbus.EventStatusChanged)
	require.Len(t, statuses, 3)
	assert.Equal(t, "caption: 1/2", statuses[0].Payload.(eventbus.StatusChangedPayload).Message)
	assert.Equal(t, "caption: 2/2", statuses[1].Payload.(eventbus.StatusChangedPayload).Message)
	assert.Equal(t, "Ready", statuses[2].Payload.(eventbus.StatusChangedPayload).Message)
}

func TestOnceTask(t *testing.T) {
	q, bus := newTestQueue(t)

	var ran atomic.Bool
	q.Add(NewOnceTask("load model", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	}))
	q.Start()
	q.Wait()

	assert.True(t, ran.Load())

	// indeterminate progress while running, reset when done
	var percents []float64
	for _, e := range bus.EventsOf(eventbus.EventProgressChanged) {
		percents = append(percents, e.Payload.(eventbus.ProgressChangedPayload).Percent)
	}
	assert.Equal(t, []float64{-1, 0}, percents)

	done := finished(t, bus)
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, 1, done.Tasks[0].Success)
}

func TestOnceTaskFailure(t *testing.T) {
	q, bus := newTestQueue(t)

	q.Add(NewOnceTask("bad", func(ctx context.Context) error {
		return errors.New("no backend")
	}))
	q.Add(NewOnceTask("panics", func(ctx context.Context) error {
		panic("out of memory")
	}))
	q.Start()
	q.Wait()

	done := finished(t, bus)
	require.Len(t, done.Tasks, 2)
	assert.Equal(t, 1, done.Tasks[0].Failed)
	assert.Equal(t, 1, done.Tasks[1].Failed)
}

func TestStopDiscardsEverythingPending(t *testing.T) {
	q, bus := newTestQueue(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var ran atomic.Int32
	each := func(ctx context.Context, it item.Item) (Result, error) {
		if ran.Add(1) == 1 {
			close(started)
			<-release
		}
		return ResultSuccess, nil
	}
	q.Add(NewTask("long", itemsN(3), each))
	q.Add(NewTask("never runs", itemsN(2), each))

	q.Start()
	<-started
	q.Stop()
	close(release)
	q.Wait()

	// the in-flight item finished, the rest was dropped
	assert.Equal(t, int32(1), ran.Load())
	assert.Equal(t, StateIdle, q.State())
	assert.Zero(t, q.PendingCount())

	// completed work keeps its recorded result even though the run aborted
	done := finished(t, bus)
	assert.True(t, done.Aborted)
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, 1, done.Tasks[0].Success)
}

func TestPauseAfterDrainIsNoop(t *testing.T) {
	q, bus := newTestQueue(t)

	q.Add(NewTask("quick", itemsN(1), succeed))
	q.Start()
	q.Wait()

	q.Pause()
	assert.Zero(t, bus.Count(eventbus.EventQueuePaused))
	assert.Equal(t, StateIdle, q.State())

	// the stray pause must not leak into the next run
	q.Add(NewTask("next", itemsN(1), succeed))
	q.Start()
	q.Wait()

	assert.Equal(t, 2, bus.Count(eventbus.EventQueueFinished))
	assert.Equal(t, StateIdle, q.State())
}

func TestPauseAndResume(t *testing.T) {
	q, bus := newTestQueue(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var ran atomic.Int32
	each := func(ctx context.Context, it item.Item) (Result, error) {
		if ran.Add(1) == 1 {
			close(started)
			<-release
		}
		return ResultSuccess, nil
	}
	q.Add(NewTask("pausable", itemsN(2), each))

	q.Start()
	<-started
	q.Pause()
	close(release)

	assert.Equal(t, StatePaused, q.State())
	assert.Equal(t, 1, bus.Count(eventbus.EventQueuePaused))

	// pausing again is a no-op
	q.Pause()
	assert.Equal(t, 1, bus.Count(eventbus.EventQueuePaused))

	q.Resume()
	q.Wait()

	assert.Equal(t, int32(2), ran.Load())
	assert.Equal(t, 1, bus.Count(eventbus.EventQueueResumed))
	assert.False(t, finished(t, bus).Aborted)
}

func TestStopWhilePaused(t *testing.T) {
	q, bus := newTestQueue(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var ran atomic.Int32
	each := func(ctx context.Context, it item.Item) (Result, error) {
		if ran.Add(1) == 1 {
			close(started)
			<-release
		}
		return ResultSuccess, nil
	}
	q.Add(NewTask("stuck", itemsN(3), each))

	q.Start()
	<-started
	q.Pause()
	close(release)
	q.Stop()
	q.Wait()

	assert.Equal(t, int32(1), ran.Load())
	assert.True(t, finished(t, bus).Aborted)
	assert.Equal(t, StateIdle, q.State())
}

func TestLifecycleNoops(t *testing.T) {
	q, bus := newTestQueue(t)

	// nothing queued
	q.Start()
	q.Pause()
	q.Resume()
	q.Stop()
	q.Wait()

	assert.Empty(t, bus.Events())
	assert.Equal(t, StateIdle, q.State())
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	q, bus := newTestQueue(t)

	started := make(chan struct{})
	release := make(chan struct{})
	each := func(ctx context.Context, it item.Item) (Result, error) {
		close(started)
		<-release
		return ResultSuccess, nil
	}
	q.Add(NewTask("one", itemsN(1), each))

	q.Start()
	<-started
	q.Start()
	close(release)
	q.Wait()

	assert.Equal(t, 1, bus.Count(eventbus.EventQueueStarted))
	assert.Equal(t, 1, bus.Count(eventbus.EventQueueFinished))
}

func TestAddPublishesPendingSet(t *testing.T) {
	q, bus := newTestQueue(t)

	q.Add(NewTask("a", itemsN(1), succeed))
	q.Add(NewOnceTask("b", func(ctx context.Context) error { return nil }))

	updates := bus.EventsOf(eventbus.EventQueueUpdated)
	require.Len(t, updates, 2)
	last := updates[1].Payload.(eventbus.QueueUpdatedPayload)
	assert.Equal(t, 2, last.Pending)
	assert.Equal(t, []string{"a", "b"}, last.Names)
}

func TestQueueIsReusableAfterAbort(t *testing.T) {
	q, bus := newTestQueue(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	each := func(ctx context.Context, it item.Item) (Result, error) {
		if first.CompareAndSwap(false, true) {
			close(started)
			<-release
		}
		return ResultSuccess, nil
	}
	q.Add(NewTask("aborted", itemsN(2), each))
	q.Start()
	<-started
	q.Stop()
	close(release)
	q.Wait()

	bus.Reset()
	q.Add(NewTask("fresh", itemsN(1), succeed))
	q.Start()
	q.Wait()

	done := finished(t, bus)
	assert.False(t, done.Aborted)
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, 1, done.Tasks[0].Success)
}
