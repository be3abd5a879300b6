// Package plugins defines the plugin contract and the registry that sorts
// plugins into capability buckets. Plugins never touch application
// internals directly; everything they need arrives through the Runtime
// passed to Init.
package plugins

import (
	"context"
	"image"

	"github.com/annoforge/annoforge/internal/core/item"
	"github.com/annoforge/annoforge/internal/core/notify"
	"github.com/annoforge/annoforge/internal/data/stores"
	"github.com/annoforge/annoforge/internal/tasks"
)

// Capability declares what a plugin contributes. Every plugin names
// exactly one; the registry files it accordingly.
type Capability string

const (
	// CapabilityModelAssistant marks plugins that generate captions via a
	// machine-learning backend. The application requires at least one.
	CapabilityModelAssistant Capability = "model-assistant"
	// CapabilityBatchOperation marks plugins that run an operation over
	// the current selection.
	CapabilityBatchOperation Capability = "batch-operation"
	// CapabilityImageProcessor marks plugins that transform image pixels.
	CapabilityImageProcessor Capability = "image-processor"
)

// Plugin is the contract every plugin implements.
type Plugin interface {
	// Name returns the stable identifier, also used as the annotation
	// namespace (e.g. "greyscale").
	Name() string

	// DisplayName returns the human-readable name shown in the UI.
	// Plugin lists are ordered by it.
	DisplayName() string

	// Capability declares the plugin's category.
	Capability() Capability

	// Init hands the plugin its runtime. Called once after registration.
	Init(rt Runtime) error

	// Close releases plugin resources.
	Close() error
}

// ModelAssistant generates captions for items through an inference
// backend.
type ModelAssistant interface {
	Plugin

	// Load activates the model at path. Loading may take minutes; callers
	// run it as a queued task.
	Load(ctx context.Context, path string) error

	// IsLoaded reports whether a model is active.
	IsLoaded() bool

	// AvailablePaths lists model checkpoints the assistant can load.
	AvailablePaths() ([]string, error)

	// SupportedPromptKinds maps display names to backend prompt tokens.
	SupportedPromptKinds() map[string]string

	// Infer generates a caption for the image using the given prompt
	// kind (a key of SupportedPromptKinds).
	Infer(ctx context.Context, imagePath, promptKind string) (string, error)
}

// BatchOperation runs an operation over the current selection, typically
// by queueing a task through the runtime.
type BatchOperation interface {
	Plugin

	Execute(ctx context.Context) error
}

// ImageProcessor transforms image pixels for display or export.
type ImageProcessor interface {
	Plugin

	Process(img image.Image) image.Image
}

// ItemObserver is an optional facet for plugins that react to the focused
// item changing.
type ItemObserver interface {
	OnItemSelected(id string)
}

// StatefulProcessor is an optional facet for plugins that persist
// per-item state as annotations.
type StatefulProcessor interface {
	// StateToPersist returns the state to store for the active item. The
	// boolean is false when there is nothing to save.
	StateToPersist() (any, bool)

	// OnStateLoaded receives previously stored state when the active
	// item changes. A nil map means no stored state exists.
	OnStateLoaded(state map[string]any)
}

// Runtime is the window plugins get into the application. The concrete
// implementation lives with the application root.
type Runtime interface {
	// CheckedItemIDs returns the checked selection, sorted.
	CheckedItemIDs() []string

	// ActiveItemID returns the focused item, or empty.
	ActiveItemID() string

	// AllItemIDs returns every loaded item in display order.
	AllItemIDs() []string

	// ItemsByID resolves identifiers to item snapshots, skipping unknowns.
	ItemsByID(ids []string) []item.Item

	// RunJob queues an iterating task and announces it.
	RunJob(name string, items []item.Item, each tasks.EachFunc)

	// RunJobOnce queues a non-iterating task and announces it.
	RunJobOnce(name string, once tasks.OnceFunc)

	// UpdateStatus sets the status-bar message.
	UpdateStatus(message string)

	// UpdateProgress sets the progress bar. Negative means indeterminate.
	UpdateProgress(percent float64)

	// Notify raises a user-facing notification.
	Notify(level notify.Level, title, message string)

	// SaveCaption overwrites the caption for an item, on disk and in
	// memory, and announces the change.
	SaveCaption(id, caption string) error

	// InvalidateImages drops cached pixels for the given items.
	InvalidateImages(ids []string)

	// RefreshItems asks the view layer to redraw the given items.
	RefreshItems(ids []string)

	// Annotations exposes persistent per-item plugin storage.
	Annotations() *stores.AnnotationStore

	// RunOnUI marshals fn onto the foreground loop. Required for any
	// view mutation from a worker goroutine.
	RunOnUI(fn func())
}
