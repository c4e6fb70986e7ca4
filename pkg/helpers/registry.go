package helpers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound reports a helper lookup miss. Recoverable unless the caller
// runs with strict errors.
var ErrNotFound = errors.New("helper not found")

// Func is a synchronous helper invoked inline during engine execution.
type Func func(key string, locals map[string]any) (string, error)

// AsyncFunc is an asynchronous helper. Implementations must invoke done
// exactly once, from any goroutine.
type AsyncFunc func(ctx context.Context, key string, locals map[string]any, done func(string, error))

// Registry maps helper names to synchronous functions.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]Func
}

// NewRegistry creates an empty synchronous helper registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Func)}
}

// Register stores a helper under the given name, replacing any previous one.
func (r *Registry) Register(name string, fn Func) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("helpers: name is required")
	}
	if fn == nil {
		return fmt.Errorf("helpers: function for %q is required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
	return nil
}

// Get returns the named helper or an ErrNotFound-wrapped error.
func (r *Registry) Get(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	if !ok {
		return nil, fmt.Errorf("helpers: %w: %s", ErrNotFound, name)
	}
	return fn, nil
}

// Names returns the sorted registered helper names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsyncRegistry maps helper names to asynchronous functions.
type AsyncRegistry struct {
	mu  sync.RWMutex
	fns map[string]AsyncFunc
}

// NewAsyncRegistry creates an empty asynchronous helper registry.
func NewAsyncRegistry() *AsyncRegistry {
	return &AsyncRegistry{fns: make(map[string]AsyncFunc)}
}

// Register stores an async helper under the given name.
func (r *AsyncRegistry) Register(name string, fn AsyncFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("helpers: name is required")
	}
	if fn == nil {
		return fmt.Errorf("helpers: function for %q is required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
	return nil
}

// Get returns the named async helper or an ErrNotFound-wrapped error.
func (r *AsyncRegistry) Get(name string) (AsyncFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	if !ok {
		return nil, fmt.Errorf("helpers: %w: %s", ErrNotFound, name)
	}
	return fn, nil
}

// Names returns the sorted registered async helper names.
func (r *AsyncRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
