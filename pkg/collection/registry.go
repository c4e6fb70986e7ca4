package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-views/pkg/view"
)

// ErrMissingCollection reports a lookup against an undeclared collection.
var ErrMissingCollection = errors.New("collection not declared")

// DeclareHook runs after a collection is declared. The facade uses it to
// register the default partial helpers.
type DeclareHook func(col *Collection)

// Registry declares collections, owns their shared store, and hands out the
// generated accessor structs. Instance-scoped: declaring a collection on one
// registry never affects another.
type Registry struct {
	mu        sync.RWMutex
	store     *view.Store
	byName    map[string]*Collection
	accessors map[string]*Accessors
	ordered   []*Collection

	// layoutOrder, when set, restricts and orders layout lookups to an
	// explicit subset of collections.
	layoutOrder []string

	render RenderFunc
	hooks  []DeclareHook
}

// NewRegistry creates an empty registry around the given store. A nil store
// gets a fresh one.
func NewRegistry(store *view.Store) *Registry {
	if store == nil {
		store = view.NewStore()
	}
	return &Registry{
		store:     store,
		byName:    make(map[string]*Collection),
		accessors: make(map[string]*Accessors),
	}
}

// Store exposes the underlying view store.
func (r *Registry) Store() *view.Store {
	return r.store
}

// SetRenderFunc injects the function backing every generated Render
// accessor. Wiring happens once, before rendering begins.
func (r *Registry) SetRenderFunc(fn RenderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.render = fn
}

// OnDeclare registers a hook invoked for every future declaration.
func (r *Registry) OnDeclare(hook DeclareHook) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// SetLayoutOrder restricts layout lookups to the named collections, searched
// in the given order. An empty call restores the default (all layout-role
// collections in declaration order).
func (r *Registry) SetLayoutOrder(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layoutOrder = names
}

// Declare registers a collection. Re-declaring an existing name is
// idempotent: the original collection is returned and its templates are
// left untouched.
func (r *Registry) Declare(name string, opts Options) (*Collection, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	r.mu.Lock()
	if existing, ok := r.byName[name]; ok {
		r.mu.Unlock()
		return existing, nil
	}

	plural := strings.TrimSpace(opts.Plural)
	if plural == "" {
		plural = name + "s"
	}
	loader := opts.Loader
	if loader == nil {
		loader = IdentityLoader()
	}

	col := &Collection{
		Name:   name,
		Plural: plural,
		Roles:  opts.roles(),
		store:  r.store,
		loader: loader,
	}
	r.store.Ensure(plural)
	r.byName[name] = col
	r.ordered = append(r.ordered, col)
	r.accessors[name] = r.buildAccessors(col)
	hooks := make([]DeclareHook, len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.Unlock()

	for _, hook := range hooks {
		hook(col)
	}
	return col, nil
}

func (r *Registry) buildAccessors(col *Collection) *Accessors {
	return &Accessors{
		Add:     col.Add,
		AddMany: col.AddMany,
		Get:     col.Get,
		Render: func(ctx context.Context, key string, locals map[string]any) (string, error) {
			r.mu.RLock()
			render := r.render
			r.mu.RUnlock()
			if render == nil {
				return "", errors.New("collection: no render function wired")
			}
			return render(ctx, col, key, locals)
		},
	}
}

// Get returns a declared collection.
func (r *Registry) Get(name string) (*Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	col, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("collection: %w: %s", ErrMissingCollection, name)
	}
	return col, nil
}

// Accessors returns the generated accessor struct for a collection.
func (r *Registry) Accessors(name string) (*Accessors, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accessors[name]
	if !ok {
		return nil, fmt.Errorf("collection: %w: %s", ErrMissingCollection, name)
	}
	return acc, nil
}

// Renderable returns every renderable-role collection in declaration order.
func (r *Registry) Renderable() []*Collection {
	return r.byRole(func(c *Collection) bool { return c.Roles.Renderable })
}

// Partials returns every partial-role collection in declaration order.
func (r *Registry) Partials() []*Collection {
	return r.byRole(func(c *Collection) bool { return c.Roles.Partial })
}

// Layouts returns the collections searched for layout templates: the
// configured explicit subset when one is set, otherwise every layout-role
// collection in declaration order.
func (r *Registry) Layouts() []*Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.layoutOrder) > 0 {
		out := make([]*Collection, 0, len(r.layoutOrder))
		for _, name := range r.layoutOrder {
			if col, ok := r.byName[name]; ok && col.Roles.Layout {
				out = append(out, col)
			}
		}
		return out
	}
	out := make([]*Collection, 0, len(r.ordered))
	for _, col := range r.ordered {
		if col.Roles.Layout {
			out = append(out, col)
		}
	}
	return out
}

func (r *Registry) byRole(match func(*Collection) bool) []*Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Collection, 0, len(r.ordered))
	for _, col := range r.ordered {
		if match(col) {
			out = append(out, col)
		}
	}
	return out
}

// FindRenderable searches renderable collections in declaration order for a
// template key. First match wins.
func (r *Registry) FindRenderable(key string) (*Collection, *view.Template) {
	for _, col := range r.Renderable() {
		if record := col.Get(key); record != nil {
			return col, record
		}
	}
	return nil, nil
}

// FindLayout searches layout collections (honoring any configured order)
// for a layout key. First match wins.
func (r *Registry) FindLayout(key string) (*Collection, *view.Template) {
	for _, col := range r.Layouts() {
		if record := col.Get(key); record != nil {
			return col, record
		}
	}
	return nil, nil
}
