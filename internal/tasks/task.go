// Package tasks implements the background work queue. Tasks run one at a
// time on a single worker goroutine; progress, status, and lifecycle
// transitions are announced on the event bus.
package tasks

import (
	"context"

	"github.com/google/uuid"

	"github.com/annoforge/annoforge/internal/core/item"
)

// Result classifies the outcome of one item within an iterating task.
type Result int

const (
	// ResultSkipped means the item was examined and deliberately left
	// untouched. Skips are counted separately from failures.
	ResultSkipped Result = iota
	// ResultSuccess means the item was processed.
	ResultSuccess
	// ResultFailure means processing the item went wrong.
	ResultFailure
)

// EachFunc processes a single item of an iterating task.
type EachFunc func(ctx context.Context, it item.Item) (Result, error)

// OnceFunc is the body of a non-iterating task.
type OnceFunc func(ctx context.Context) error

// Task is one unit of queued work. Iterating tasks carry a snapshot of
// items and call Each per item; non-iterating tasks call Once exactly once
// with indeterminate progress.
type Task struct {
	ID    string
	Name  string
	Items []item.Item
	Each  EachFunc
	Once  OnceFunc
}

// NewTask creates an iterating task over a snapshot of items.
func NewTask(name string, items []item.Item, each EachFunc) Task {
	return Task{
		ID:    uuid.NewString(),
		Name:  name,
		Items: items,
		Each:  each,
	}
}

// NewOnceTask creates a non-iterating task.
func NewOnceTask(name string, once OnceFunc) Task {
	return Task{
		ID:   uuid.NewString(),
		Name: name,
		Once: once,
	}
}

// Iterating reports whether the task processes items one by one.
func (t Task) Iterating() bool {
	return t.Each != nil
}
