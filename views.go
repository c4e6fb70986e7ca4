// Package views composes and renders named content fragments drawn from
// typed collections (renderable pages, layouts, partials) through pluggable
// per-extension rendering engines. The root package is a facade: it wires
// the collection registry, engine registry, helper registries, and render
// pipeline into one entry point with sensible defaults, while every piece
// remains individually injectable for advanced callers.
package views

import (
	"context"
	"fmt"

	"github.com/goliatone/go-views/pkg/collection"
	"github.com/goliatone/go-views/pkg/config"
	"github.com/goliatone/go-views/pkg/engine"
	"github.com/goliatone/go-views/pkg/engine/gotext"
	"github.com/goliatone/go-views/pkg/engine/pongo"
	"github.com/goliatone/go-views/pkg/engine/raw"
	"github.com/goliatone/go-views/pkg/helpers"
	"github.com/goliatone/go-views/pkg/render"
	"github.com/goliatone/go-views/pkg/view"
)

// Request aliases the pipeline request for callers that only import the
// root package.
type Request = render.Request

// Views is the composed template system. Construct it with New; the zero
// value is not usable.
type Views struct {
	collections  *collection.Registry
	engines      *engine.Registry
	syncHelpers  *helpers.Registry
	asyncHelpers *helpers.AsyncRegistry
	pipeline     *render.Pipeline
	logger       render.Logger
	cfg          config.Config

	themeSeed func() (map[string]any, error)

	skipDefaultEngines bool
	skipBuiltinHelpers bool
}

// New constructs a wired system. Defaults: gotext, pongo and raw engines
// registered, built-in string helpers installed, lax error handling,
// data-over-locals precedence, flattened partials bucket.
func New(options ...Option) (*Views, error) {
	v := &Views{
		cfg: config.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}

	if v.logger == nil {
		v.logger = render.NewLogger()
	}
	if v.collections == nil {
		v.collections = collection.NewRegistry(nil)
	}
	if v.engines == nil {
		v.engines = engine.NewRegistry()
	}
	if v.syncHelpers == nil {
		v.syncHelpers = helpers.NewRegistry()
	}
	if v.asyncHelpers == nil {
		v.asyncHelpers = helpers.NewAsyncRegistry()
	}

	v.pipeline = render.NewPipeline(v.collections, v.engines, v.syncHelpers, v.asyncHelpers, render.Options{
		StrictErrors:              v.cfg.StrictErrors,
		PreferLocals:              v.cfg.PreferLocals,
		GroupPartialsByCollection: v.cfg.GroupPartialsByCollection,
		DefaultLayout:             v.cfg.DefaultLayout,
		DefaultEngine:             v.cfg.DefaultEngine,
		Logger:                    v.logger,
	})
	if len(v.cfg.Global) > 0 {
		v.pipeline.SetGlobal(v.cfg.Global)
	}

	v.collections.SetRenderFunc(func(ctx context.Context, col *collection.Collection, key string, locals map[string]any) (string, error) {
		return v.pipeline.RenderFrom(ctx, col, key, locals)
	})
	v.collections.OnDeclare(v.registerPartialHelpers)

	if !v.skipDefaultEngines {
		if err := v.registerDefaultEngines(); err != nil {
			return nil, err
		}
	}
	// Configured delimiters land after the default engine registrations so
	// they can override the per-engine defaults.
	for ext, pair := range v.cfg.Delimiters {
		if _, err := v.engines.Delims().Register(ext, pair.Open, pair.Close); err != nil {
			return nil, fmt.Errorf("views: delimiters for %s: %w", ext, err)
		}
	}
	if !v.skipBuiltinHelpers {
		if err := v.registerBuiltinHelpers(); err != nil {
			return nil, err
		}
	}

	if v.themeSeed != nil {
		data, err := v.themeSeed()
		if err != nil {
			return nil, err
		}
		v.pipeline.SetGlobal(data)
	}

	return v, nil
}

func (v *Views) registerDefaultEngines() error {
	// text/template interpolates with {{ }}; the delimiter registration keeps
	// the body marker and the engine syntax aligned for these extensions.
	gotextOpts := engine.RegisterOptions{Delimiters: &engine.Delimiters{Open: "{{", Close: "}}"}}
	if err := v.engines.Register(gotext.New(), gotextOpts, ".gotext", ".tmpl"); err != nil {
		return fmt.Errorf("views: register gotext: %w", err)
	}
	if err := v.engines.Register(pongo.New(), engine.RegisterOptions{}, ".pongo", ".html"); err != nil {
		return fmt.Errorf("views: register pongo: %w", err)
	}
	if err := v.engines.Register(raw.New(), engine.RegisterOptions{}, ".raw", ".txt"); err != nil {
		return fmt.Errorf("views: register raw: %w", err)
	}
	return nil
}

// Declare registers a collection and returns its generated accessors.
// Re-declaring an existing name returns the original accessors without
// touching stored templates.
func (v *Views) Declare(name string, opts collection.Options) (*collection.Accessors, error) {
	if _, err := v.collections.Declare(name, opts); err != nil {
		return nil, err
	}
	return v.collections.Accessors(name)
}

// Collection returns the accessors of a declared collection.
func (v *Views) Collection(name string) (*collection.Accessors, error) {
	return v.collections.Accessors(name)
}

// RegisterEngine stores an engine adapter for one or more extensions.
func (v *Views) RegisterEngine(adapter engine.Adapter, opts engine.RegisterOptions, extensions ...string) error {
	return v.engines.Register(adapter, opts, extensions...)
}

// Helper registers a synchronous helper usable from any engine.
func (v *Views) Helper(name string, fn helpers.Func) error {
	return v.syncHelpers.Register(name, fn)
}

// AsyncHelper registers an asynchronous helper. Inside templates it yields
// a placeholder token replaced with the settled value before delivery.
func (v *Views) AsyncHelper(name string, fn helpers.AsyncFunc) error {
	return v.asyncHelpers.Register(name, fn)
}

// Global merges data into the shared context, the lowest-precedence source
// of every render.
func (v *Views) Global(data map[string]any) {
	v.pipeline.SetGlobal(data)
}

// Use registers a middleware hook against a path pattern and phase.
func (v *Views) Use(pattern string, phase render.Phase, fn render.MiddlewareFunc) {
	v.pipeline.Middleware().Use(pattern, phase, fn)
}

// SetLayoutOrder restricts layout lookups to an explicit ordered subset of
// collections.
func (v *Views) SetLayoutOrder(names ...string) {
	v.collections.SetLayoutOrder(names...)
}

// Render executes the pipeline synchronously for a request.
func (v *Views) Render(ctx context.Context, req Request) (string, error) {
	return v.pipeline.Render(ctx, req)
}

// RenderSync renders a target (template key or inline content) with call
// locals and returns the final string.
func (v *Views) RenderSync(ctx context.Context, target string, locals map[string]any) (string, error) {
	return v.pipeline.RenderSync(ctx, target, locals)
}

// RenderAsync renders off the calling goroutine through the engine's async
// entry point; done fires exactly once.
func (v *Views) RenderAsync(ctx context.Context, req Request, done func(string, error)) {
	v.pipeline.RenderAsync(ctx, req, done)
}

// Collections exposes the collection registry.
func (v *Views) Collections() *collection.Registry {
	return v.collections
}

// Engines exposes the engine registry.
func (v *Views) Engines() *engine.Registry {
	return v.engines
}

// registerPartialHelpers installs the default per-collection helpers: a
// sync and an async helper named after the collection that look a template
// up by key and render it. A missing key reports a helper-not-found
// condition, recoverable outside strict mode.
func (v *Views) registerPartialHelpers(col *collection.Collection) {
	if !col.Roles.Partial {
		return
	}
	name := col.Name

	if err := v.syncHelpers.Register(name, func(key string, locals map[string]any) (string, error) {
		if col.Get(key) == nil {
			return "", fmt.Errorf("views: %w: %s/%s", helpers.ErrNotFound, name, key)
		}
		return v.pipeline.RenderFrom(context.Background(), col, key, locals)
	}); err != nil {
		v.logger.Warnf("views: partial helper %q: %v", name, err)
	}

	if err := v.asyncHelpers.Register(name, func(ctx context.Context, key string, locals map[string]any, done func(string, error)) {
		if col.Get(key) == nil {
			done("", fmt.Errorf("views: %w: %s/%s", helpers.ErrNotFound, name, key))
			return
		}
		done(v.pipeline.RenderFrom(ctx, col, key, locals))
	}); err != nil {
		v.logger.Warnf("views: async partial helper %q: %v", name, err)
	}
}

// ByKeyValue registers a single template from a key and raw content. The
// tagged add-input constructors are re-exported so most callers only import
// the root package.
func ByKeyValue(key, content string, locals map[string]any) view.AddInput {
	return view.ByKeyValue(key, content, locals)
}

// ByObject registers a single fully-formed template record.
func ByObject(t view.Template) view.AddInput {
	return view.ByObject(t)
}

// ByObjects registers many records keyed by template key.
func ByObjects(templates map[string]view.Template) view.AddInput {
	return view.ByObjects(templates)
}

// ByPattern defers registration to the collection's loader.
func ByPattern(pattern string) view.AddInput {
	return view.ByPattern(pattern)
}
