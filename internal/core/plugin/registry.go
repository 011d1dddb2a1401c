package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Transform is the contract every minification plugin fulfils: bytes in,
// smaller (or equal) bytes out, or an error.
type Transform interface {
	Apply(ctx context.Context, data []byte) ([]byte, error)
}

// TransformFunc adapts a plain function to the Transform interface.
type TransformFunc func(ctx context.Context, data []byte) ([]byte, error)

// Apply implements Transform.
func (f TransformFunc) Apply(ctx context.Context, data []byte) ([]byte, error) {
	return f(ctx, data)
}

// Factory instantiates a Transform bound to one set of options. Factories run
// at load time, so they should surface missing-tool errors here rather than
// on first Apply.
type Factory func(opts Options) (Transform, error)

// Handle is a resolved, instantiated transform bound to one Spec. Handles are
// owned by the pipeline executor for the duration of a single run.
type Handle struct {
	Spec      Spec
	Transform Transform
}

// NotInstalledError reports a plugin that could not be resolved, carrying the
// attempted name and an exact remediation command.
type NotInstalledError struct {
	Name string
	Hint string
}

// Error implements the error interface.
func (e *NotInstalledError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("plugin %q is not installed", e.Name)
	}
	return fmt.Sprintf("plugin %q is not installed; install it with:\n  %s", e.Name, e.Hint)
}

// Registry maps plugin names to factories. It is populated once at startup
// from the builtin table plus any configuration-defined plugins, then only
// read, but lookups are guarded anyway since loads run concurrently.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates a factory with a plugin name, replacing any previous
// registration under that name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Lookup resolves a name to its factory. A miss returns *NotInstalledError.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, &NotInstalledError{
			Name: name,
			Hint: fmt.Sprintf("imgmin --config <file> with a definitions entry for %q, or use one of: %s", name, r.namesLocked()),
		}
	}
	return factory, nil
}

// Names returns the registered plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) namesLocked() string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
