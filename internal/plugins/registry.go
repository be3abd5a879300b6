package plugins

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/logging"
)

// Registry holds registered plugins grouped by capability. Accessors
// return plugins sorted by display name.
type Registry struct {
	log zerolog.Logger

	mu     sync.RWMutex
	byName map[string]Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		log:    logging.Component("plugins"),
		byName: map[string]Plugin{},
	}
}

// Register adds a plugin to the registry.
// Returns an error if a plugin with the same name is already registered;
// the existing plugin keeps its spot.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[p.Name()]; exists {
		return fmt.Errorf("plugin %q already registered", p.Name())
	}

	switch p.Capability() {
	case CapabilityModelAssistant:
		if _, ok := p.(ModelAssistant); !ok {
			return fmt.Errorf("plugin %q declares %s but does not implement it", p.Name(), p.Capability())
		}
	case CapabilityBatchOperation:
		if _, ok := p.(BatchOperation); !ok {
			return fmt.Errorf("plugin %q declares %s but does not implement it", p.Name(), p.Capability())
		}
	case CapabilityImageProcessor:
		if _, ok := p.(ImageProcessor); !ok {
			return fmt.Errorf("plugin %q declares %s but does not implement it", p.Name(), p.Capability())
		}
	default:
		return fmt.Errorf("plugin %q has unknown capability %q", p.Name(), p.Capability())
	}

	r.byName[p.Name()] = p
	r.log.Info().Str("plugin", p.Name()).Str("capability", string(p.Capability())).Msg("plugin registered")
	return nil
}

// Get returns the plugin with the given name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// All returns every registered plugin sorted by display name.
func (r *Registry) All() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plugin, 0, len(r.byName))
	for _, p := range r.byName {
		out = append(out, p)
	}
	sortByDisplayName(out)
	return out
}

// ModelAssistants returns the registered model assistants sorted by
// display name.
func (r *Registry) ModelAssistants() []ModelAssistant {
	var out []ModelAssistant
	for _, p := range r.All() {
		if p.Capability() == CapabilityModelAssistant {
			out = append(out, p.(ModelAssistant))
		}
	}
	return out
}

// BatchOperations returns the registered batch operations sorted by
// display name.
func (r *Registry) BatchOperations() []BatchOperation {
	var out []BatchOperation
	for _, p := range r.All() {
		if p.Capability() == CapabilityBatchOperation {
			out = append(out, p.(BatchOperation))
		}
	}
	return out
}

// ImageProcessors returns the registered image processors sorted by
// display name.
func (r *Registry) ImageProcessors() []ImageProcessor {
	var out []ImageProcessor
	for _, p := range r.All() {
		if p.Capability() == CapabilityImageProcessor {
			out = append(out, p.(ImageProcessor))
		}
	}
	return out
}

// PrimaryAssistant returns the first model assistant by display name. The
// boolean is false when none is registered.
func (r *Registry) PrimaryAssistant() (ModelAssistant, bool) {
	assistants := r.ModelAssistants()
	if len(assistants) == 0 {
		return nil, false
	}
	return assistants[0], true
}

// InitAll initializes every plugin through the worker pool. Plugins whose
// Init fails are dropped from the registry and reported in the combined
// error.
func (r *Registry) InitAll(rt Runtime, pool *WorkerPool) error {
	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)

	for _, p := range r.All() {
		wg.Add(1)
		go func(p Plugin) {
			defer wg.Done()
			pool.Run(func() {
				if err := r.initOne(p, rt); err != nil {
					errMu.Lock()
					errs = append(errs, err)
					errMu.Unlock()
				}
			})
		}(p)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (r *Registry) initOne(p Plugin, rt Runtime) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin %q panicked in init: %v", p.Name(), rec)
		}
		if err != nil {
			r.log.Warn().Err(err).Str("plugin", p.Name()).Msg("plugin dropped")
			r.mu.Lock()
			delete(r.byName, p.Name())
			r.mu.Unlock()
		}
	}()

	if err := p.Init(rt); err != nil {
		return fmt.Errorf("plugin %q init: %w", p.Name(), err)
	}
	return nil
}

// CloseAll closes every plugin, keeping going past failures.
func (r *Registry) CloseAll() error {
	var errs []error
	for _, p := range r.All() {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("plugin %q close: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func sortByDisplayName(ps []Plugin) {
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].DisplayName() < ps[j].DisplayName()
	})
}
