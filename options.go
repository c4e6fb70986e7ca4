package views

import (
	"github.com/goliatone/go-views/pkg/collection"
	"github.com/goliatone/go-views/pkg/config"
	"github.com/goliatone/go-views/pkg/engine"
	"github.com/goliatone/go-views/pkg/helpers"
	"github.com/goliatone/go-views/pkg/render"
)

// Option customizes the system before wiring.
type Option func(*Views)

// WithConfig replaces the entire configuration. Apply before options that
// tweak single fields.
func WithConfig(cfg config.Config) Option {
	return func(v *Views) {
		v.cfg = cfg
	}
}

// WithLogger sets the logger used by the pipeline and helpers.
func WithLogger(logger render.Logger) Option {
	return func(v *Views) {
		v.logger = logger
	}
}

// WithStrictErrors upgrades recoverable lookup and helper misses to fatal
// errors.
func WithStrictErrors(strict bool) Option {
	return func(v *Views) {
		v.cfg.StrictErrors = strict
	}
}

// WithPreferLocals makes template locals win over template data on key
// collisions.
func WithPreferLocals(prefer bool) Option {
	return func(v *Views) {
		v.cfg.PreferLocals = prefer
	}
}

// WithGroupedPartials keeps each partial collection under its own name in
// the render context instead of one flattened "partials" bucket.
func WithGroupedPartials(grouped bool) Option {
	return func(v *Views) {
		v.cfg.GroupPartialsByCollection = grouped
	}
}

// WithDefaultLayout names the layout wrapped around renderable templates
// that do not pick their own.
func WithDefaultLayout(key string) Option {
	return func(v *Views) {
		v.cfg.DefaultLayout = key
	}
}

// WithDefaultEngine sets the fallback engine extension.
func WithDefaultEngine(ext string) Option {
	return func(v *Views) {
		v.cfg.DefaultEngine = ext
	}
}

// WithGlobal merges seed data into the shared context.
func WithGlobal(data map[string]any) Option {
	return func(v *Views) {
		if v.cfg.Global == nil {
			v.cfg.Global = make(map[string]any, len(data))
		}
		for key, value := range data {
			v.cfg.Global[key] = value
		}
	}
}

// WithDelimiters registers a delimiter pair for an extension at wiring
// time.
func WithDelimiters(ext, open, close string) Option {
	return func(v *Views) {
		if v.cfg.Delimiters == nil {
			v.cfg.Delimiters = make(map[string]config.Delimiters)
		}
		v.cfg.Delimiters[ext] = config.Delimiters{Open: open, Close: close}
	}
}

// WithCollections injects a pre-built collection registry.
func WithCollections(registry *collection.Registry) Option {
	return func(v *Views) {
		v.collections = registry
	}
}

// WithEngines injects a pre-built engine registry.
func WithEngines(registry *engine.Registry) Option {
	return func(v *Views) {
		v.engines = registry
	}
}

// WithHelperRegistries injects pre-built helper registries.
func WithHelperRegistries(sync *helpers.Registry, async *helpers.AsyncRegistry) Option {
	return func(v *Views) {
		v.syncHelpers = sync
		v.asyncHelpers = async
	}
}

// WithoutDefaultEngines skips registering the gotext, pongo, and raw
// adapters; the caller registers its own.
func WithoutDefaultEngines() Option {
	return func(v *Views) {
		v.skipDefaultEngines = true
	}
}

// WithoutBuiltinHelpers skips the sanitize/upper/lower/trim helpers.
func WithoutBuiltinHelpers() Option {
	return func(v *Views) {
		v.skipBuiltinHelpers = true
	}
}
