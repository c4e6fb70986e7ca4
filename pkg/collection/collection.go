package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-views/pkg/view"
)

// Roles marks which rendering roles a collection participates in. Roles are
// fixed at declare time.
type Roles struct {
	Renderable bool
	Layout     bool
	Partial    bool
}

// Loader materializes templates from a pattern. The glob/filesystem loaders
// live outside this module; the default identity loader simply echoes the
// pattern back as a single template.
type Loader interface {
	Load(pattern string, locals map[string]any, opts map[string]any) (map[string]view.Template, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(pattern string, locals map[string]any, opts map[string]any) (map[string]view.Template, error)

// Load implements Loader.
func (f LoaderFunc) Load(pattern string, locals map[string]any, opts map[string]any) (map[string]view.Template, error) {
	return f(pattern, locals, opts)
}

// IdentityLoader treats the pattern itself as the template key and content.
func IdentityLoader() Loader {
	return LoaderFunc(func(pattern string, locals map[string]any, _ map[string]any) (map[string]view.Template, error) {
		return map[string]view.Template{
			pattern: {Key: pattern, Content: pattern, Locals: locals},
		}, nil
	})
}

// Collection is one named group of templates sharing a role set and a
// single underlying store bucket.
type Collection struct {
	Name   string
	Plural string
	Roles  Roles

	store  *view.Store
	loader Loader
}

// Add normalizes the input and inserts every resulting record. Pattern
// inputs delegate to the collection's loader.
func (c *Collection) Add(in view.AddInput) error {
	if in.IsPattern() {
		return c.AddMany(in)
	}
	records, err := in.Normalize()
	if err != nil {
		return err
	}
	for _, record := range records {
		c.store.Set(c.Plural, record.Key, record)
	}
	return nil
}

// AddMany inserts many templates at once. Pattern inputs run through the
// loader; object inputs are normalized directly.
func (c *Collection) AddMany(in view.AddInput) error {
	if !in.IsPattern() {
		return c.Add(in)
	}
	loaded, err := c.loader.Load(in.Pattern(), nil, nil)
	if err != nil {
		return fmt.Errorf("collection %s: load %q: %w", c.Name, in.Pattern(), err)
	}
	return c.Add(view.ByObjects(loaded))
}

// Get returns the stored record or nil.
func (c *Collection) Get(key string) *view.Template {
	return c.store.Get(c.Plural, key)
}

// All returns a copy of the collection's template map.
func (c *Collection) All() map[string]*view.Template {
	return c.store.All(c.Plural)
}

// Keys returns the sorted template keys.
func (c *Collection) Keys() []string {
	return c.store.Keys(c.Plural)
}

// Options configures a collection declaration.
type Options struct {
	// Plural overrides the derived plural name (name + "s").
	Plural string
	// Role flags. When none is set the collection defaults to partial.
	IsRenderable bool
	IsLayout     bool
	IsPartial    bool
	// Loader handles pattern-based AddMany calls. Defaults to the identity
	// loader.
	Loader Loader
}

func (o Options) roles() Roles {
	roles := Roles{Renderable: o.IsRenderable, Layout: o.IsLayout, Partial: o.IsPartial}
	if !roles.Renderable && !roles.Layout && !roles.Partial {
		roles.Partial = true
	}
	return roles
}

// RenderFunc renders one template of a collection by key. The registry does
// not render anything itself; the pipeline injects this at wiring time.
type RenderFunc func(ctx context.Context, col *Collection, key string, locals map[string]any) (string, error)

// Accessors is the per-collection operation surface generated at declare
// time. Each field is bound to one collection.
type Accessors struct {
	Add     func(in view.AddInput) error
	AddMany func(in view.AddInput) error
	Get     func(key string) *view.Template
	Render  func(ctx context.Context, key string, locals map[string]any) (string, error)
}

func validName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("collection: name is required")
	}
	for _, r := range trimmed {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-' {
			continue
		}
		return fmt.Errorf("collection: invalid name %q", name)
	}
	return nil
}
