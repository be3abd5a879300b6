package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/logging"
)

// State is the queue lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// readyStatus is published when the queue drains.
const readyStatus = "Ready"

// Queue runs tasks sequentially on a single worker goroutine. Adding is
// allowed at any time, including while the worker is draining. Pause holds
// the worker between items; Stop aborts the current task and discards
// everything pending.
type Queue struct {
	bus  *eventbus.EventBus
	log  zerolog.Logger
	poll time.Duration

	paused atomic.Bool
	abort  atomic.Bool

	mu      sync.Mutex
	pending []Task
	running bool
	done    chan struct{}
}

// NewQueue creates an idle queue. poll is the interval at which a paused
// worker re-checks its flags.
func NewQueue(bus *eventbus.EventBus, poll time.Duration) *Queue {
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	return &Queue{
		bus:  bus,
		log:  logging.Component("tasks"),
		poll: poll,
	}
}

// Add appends a task and announces the new pending set. The worker is not
// started implicitly.
func (q *Queue) Add(t Task) {
	q.mu.Lock()
	q.pending = append(q.pending, t)
	pending, names := q.pendingLocked()
	q.mu.Unlock()

	q.log.Debug().Str("task", t.Name).Int("pending", pending).Msg("task queued")
	q.bus.PublishQueueUpdated(eventbus.QueueUpdatedPayload{Pending: pending, Names: names})
}

// Start launches the worker. It is a no-op when the worker is already
// running or nothing is pending.
func (q *Queue) Start() {
	q.mu.Lock()
	if q.running || len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.done = make(chan struct{})
	q.abort.Store(false)
	q.paused.Store(false)
	q.mu.Unlock()

	q.bus.PublishQueueStarted(eventbus.QueueStartedPayload{})
	go q.run()
}

// Pause holds the worker before the next item. It is a no-op unless the
// queue is running unpaused.
func (q *Queue) Pause() {
	// the CAS happens under mu so a finalizing worker cannot slip in
	// between the running check and the flag flip
	q.mu.Lock()
	ok := q.running && q.paused.CompareAndSwap(false, true)
	q.mu.Unlock()

	if !ok {
		return
	}
	q.bus.PublishQueuePaused(eventbus.QueuePausedPayload{})
}

// Resume releases a paused worker. It is a no-op unless paused.
func (q *Queue) Resume() {
	q.mu.Lock()
	ok := q.running && q.paused.CompareAndSwap(true, false)
	q.mu.Unlock()

	if !ok {
		return
	}
	q.bus.PublishQueueResumed(eventbus.QueueResumedPayload{})
}

// Stop aborts the run: the current task stops after the item in flight and
// everything pending is discarded. A paused queue is released so it can
// observe the abort. No-op when idle.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}
	q.abort.Store(true)
	q.paused.Store(false)
}

// State returns the current lifecycle state.
func (q *Queue) State() State {
	q.mu.Lock()
	running := q.running
	q.mu.Unlock()

	switch {
	case !running:
		return StateIdle
	case q.paused.Load():
		return StatePaused
	default:
		return StateRunning
	}
}

// PendingCount returns the number of queued tasks.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Wait blocks until the worker goroutine has finished. Returns immediately
// when the queue is idle.
func (q *Queue) Wait() {
	q.mu.Lock()
	done := q.done
	running := q.running
	q.mu.Unlock()

	if !running || done == nil {
		return
	}
	<-done
}

func (q *Queue) run() {
	ctx := context.Background()
	var summaries []eventbus.TaskSummary
	aborted := false

	for {
		if q.abort.Load() {
			aborted = true
			break
		}

		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			break
		}
		t := q.pending[0]
		q.pending = q.pending[1:]
		pending, names := q.pendingLocked()
		q.mu.Unlock()

		q.bus.PublishQueueUpdated(eventbus.QueueUpdatedPayload{Pending: pending, Names: names})

		summary, taskAborted := q.runTask(ctx, t)
		summaries = append(summaries, summary)
		if taskAborted {
			aborted = true
			break
		}
	}

	q.finalize(aborted, summaries)
}

// runTask executes one task and reports whether an abort cut it short.
func (q *Queue) runTask(ctx context.Context, t Task) (eventbus.TaskSummary, bool) {
	summary := eventbus.TaskSummary{ID: t.ID, Name: t.Name}
	q.log.Info().Str("task", t.Name).Int("items", len(t.Items)).Msg("task started")

	if !t.Iterating() {
		q.bus.PublishStatusChanged(eventbus.StatusChangedPayload{Message: t.Name})
		q.bus.PublishProgressChanged(eventbus.ProgressChangedPayload{Percent: -1})

		if err := q.runOnce(ctx, t); err != nil {
			q.log.Error().Err(err).Str("task", t.Name).Msg("task failed")
			summary.Failed = 1
		} else {
			summary.Success = 1
		}
		return summary, false
	}

	total := len(t.Items)
	for i, it := range t.Items {
		for q.paused.Load() && !q.abort.Load() {
			time.Sleep(q.poll)
		}
		if q.abort.Load() {
			q.log.Warn().Str("task", t.Name).Int("done", i).Msg("task aborted")
			return summary, true
		}

		q.bus.PublishStatusChanged(eventbus.StatusChangedPayload{
			Message: fmt.Sprintf("%s: %d/%d", t.Name, i+1, total),
		})

		switch q.runItem(ctx, t, it) {
		case ResultSuccess:
			summary.Success++
		case ResultFailure:
			summary.Failed++
		case ResultSkipped:
			summary.Skipped++
		}

		q.bus.PublishProgressChanged(eventbus.ProgressChangedPayload{
			Percent: float64(i+1) / float64(total) * 100,
		})
	}

	q.log.Info().
		Str("task", t.Name).
		Int("success", summary.Success).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("task finished")
	return summary, false
}

// runItem calls Each for one item, converting a panic or error into a
// failure so the rest of the task keeps going.
func (q *Queue) runItem(ctx context.Context, t Task, it item.Item) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Str("task", t.Name).Str("item", it.ID).Any("panic", r).Msg("task item panicked")
			result = ResultFailure
		}
	}()

	res, err := t.Each(ctx, it)
	if err != nil {
		q.log.Warn().Err(err).Str("task", t.Name).Str("item", it.ID).Msg("task item failed")
		return ResultFailure
	}
	return res
}

func (q *Queue) runOnce(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return t.Once(ctx)
}

// finalize resets the queue and announces the run outcome. It always
// leaves the queue idle and empty, even after failures or an abort.
func (q *Queue) finalize(aborted bool, summaries []eventbus.TaskSummary) {
	// flags clear under the same lock that drops running, so Pause and
	// Stop can never re-arm them against an idle queue
	q.mu.Lock()
	q.pending = nil
	q.running = false
	done := q.done
	q.done = nil
	q.abort.Store(false)
	q.paused.Store(false)
	q.mu.Unlock()

	q.bus.PublishStatusChanged(eventbus.StatusChangedPayload{Message: readyStatus})
	q.bus.PublishProgressChanged(eventbus.ProgressChangedPayload{Percent: 0})
	q.bus.PublishQueueUpdated(eventbus.QueueUpdatedPayload{Pending: 0, Names: []string{}})
	q.bus.PublishQueueFinished(eventbus.QueueFinishedPayload{Aborted: aborted, Tasks: summaries})

	close(done)
}

func (q *Queue) pendingLocked() (int, []string) {
	names := make([]string, 0, len(q.pending))
	for _, t := range q.pending {
		names = append(names, t.Name)
	}
	return len(q.pending), names
}
