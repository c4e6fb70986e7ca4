package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-views/pkg/collection"
	"github.com/goliatone/go-views/pkg/delim"
	"github.com/goliatone/go-views/pkg/engine"
	"github.com/goliatone/go-views/pkg/helpers"
	"github.com/goliatone/go-views/pkg/view"
)

// Options configures pipeline behavior. The zero value is usable: lax
// errors, data-over-locals precedence, flattened partials.
type Options struct {
	// StrictErrors upgrades recoverable conditions (lookup and helper
	// misses) to fatal errors.
	StrictErrors bool
	// PreferLocals flips the template locals/data merge so locals win.
	PreferLocals bool
	// GroupPartialsByCollection keeps each partial collection under its own
	// name in the context instead of one flattened "partials" bucket.
	GroupPartialsByCollection bool
	// DefaultLayout wraps every renderable template that does not pick its
	// own layout. Partials never inherit it.
	DefaultLayout string
	// DefaultEngine is the fallback extension when nothing else resolves.
	DefaultEngine string
	// Logger receives recoverable diagnostics. Defaults to the logrus
	// backed logger.
	Logger Logger
}

// Request names the inputs of one render call.
type Request struct {
	// Target is a renderable template key, or inline template content when
	// no renderable collection holds the key.
	Target string
	// Locals is the call-time data, merged last into the context.
	Locals map[string]any
	// Engine optionally forces an engine, taking precedence over every
	// other resolution source.
	Engine string
}

// Pipeline is the top-level orchestration of one render: lookup, before
// middleware, context building, layout application, engine dispatch, async
// helper resolution, after middleware.
type Pipeline struct {
	collections  *collection.Registry
	engines      *engine.Registry
	syncHelpers  *helpers.Registry
	asyncHelpers *helpers.AsyncRegistry
	middleware   *Middleware
	logger       Logger
	opts         Options

	mu     sync.RWMutex
	global map[string]any
}

// NewPipeline wires a pipeline from its collaborators. Nil registries get
// fresh empty instances so a zero-configuration pipeline still works.
func NewPipeline(collections *collection.Registry, engines *engine.Registry, syncHelpers *helpers.Registry, asyncHelpers *helpers.AsyncRegistry, opts Options) *Pipeline {
	if collections == nil {
		collections = collection.NewRegistry(nil)
	}
	if engines == nil {
		engines = engine.NewRegistry()
	}
	if syncHelpers == nil {
		syncHelpers = helpers.NewRegistry()
	}
	if asyncHelpers == nil {
		asyncHelpers = helpers.NewAsyncRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = NewLogger()
	}
	p := &Pipeline{
		collections:  collections,
		engines:      engines,
		syncHelpers:  syncHelpers,
		asyncHelpers: asyncHelpers,
		middleware:   NewMiddleware(),
		logger:       opts.Logger,
		opts:         opts,
		global:       make(map[string]any),
	}
	return p
}

// Middleware exposes the hook table for registration.
func (p *Pipeline) Middleware() *Middleware {
	return p.middleware
}

// SetGlobal merges data into the global shared context, the lowest
// precedence source of every render.
func (p *Pipeline) SetGlobal(data map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	mergeInto(p.global, data)
}

func (p *Pipeline) globalSnapshot() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]any, len(p.global))
	mergeInto(out, p.global)
	return out
}

// Render executes the pipeline synchronously and returns the final string.
func (p *Pipeline) Render(ctx context.Context, req Request) (string, error) {
	col, record, err := p.lookup(req.Target)
	if err != nil {
		return "", err
	}
	return p.render(ctx, col, record, req.Locals, req.Engine, false)
}

// RenderSync renders a target with call locals. Convenience over Render.
func (p *Pipeline) RenderSync(ctx context.Context, target string, locals map[string]any) (string, error) {
	return p.Render(ctx, Request{Target: target, Locals: locals})
}

// RenderAsync executes the pipeline off the calling goroutine, using the
// engine's asynchronous entry point, and invokes done exactly once with
// either the final string or the first error.
func (p *Pipeline) RenderAsync(ctx context.Context, req Request, done func(string, error)) {
	if done == nil {
		done = func(string, error) {}
	}
	go func() {
		var once sync.Once
		deliver := func(out string, err error) {
			once.Do(func() { done(out, err) })
		}
		defer func() {
			if rec := recover(); rec != nil {
				deliver("", fmt.Errorf("render: panic: %v", rec))
			}
		}()
		col, record, err := p.lookup(req.Target)
		if err != nil {
			deliver("", err)
			return
		}
		out, err := p.render(ctx, col, record, req.Locals, req.Engine, true)
		deliver(out, err)
	}()
}

// RenderFrom renders one template of a specific collection by key. It backs
// the generated Render accessors and the default partial helpers. A missing
// key is recoverable outside strict mode: empty result, logged.
func (p *Pipeline) RenderFrom(ctx context.Context, col *collection.Collection, key string, locals map[string]any) (string, error) {
	if col == nil {
		return "", fmt.Errorf("render: %w", ErrMissingCollection)
	}
	record := col.Get(key)
	if record == nil {
		if p.opts.StrictErrors {
			return "", fmt.Errorf("render: %w: %s/%s", ErrMissingTemplate, col.Name, key)
		}
		p.logger.Warnf("render: template %s/%s not found", col.Name, key)
		return "", nil
	}
	return p.render(ctx, col, record, locals, "", false)
}

// lookup finds the target across renderable collections; an unmatched
// target becomes anonymous inline content.
func (p *Pipeline) lookup(target string) (*collection.Collection, *view.Template, error) {
	if target == "" {
		return nil, nil, fmt.Errorf("render: %w: empty target", ErrValidation)
	}
	if col, record := p.collections.FindRenderable(target); record != nil {
		return col, record, nil
	}
	inline := &view.Template{Key: "inline", Path: "inline", Content: target}
	return nil, inline, nil
}

func (p *Pipeline) render(ctx context.Context, col *collection.Collection, record *view.Template, callLocals map[string]any, override string, async bool) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if record == nil {
		return "", fmt.Errorf("render: %w: nil record", ErrValidation)
	}
	if err := record.Validate(); err != nil {
		return "", fmt.Errorf("render: %w: %v", ErrValidation, err)
	}

	roles := collection.Roles{Renderable: true}
	if col != nil {
		roles = col.Roles
	}

	// Stored records are never mutated by rendering; every stage below works
	// on this clone. Only the compiled cache is written back.
	clone := record.Clone()
	p.middleware.Run(Before, clone, p.logger)

	resolver := helpers.NewResolver()
	builder := &contextBuilder{
		collections:     p.collections,
		global:          p.globalSnapshot(),
		preferLocals:    p.opts.PreferLocals,
		flattenPartials: !p.opts.GroupPartialsByCollection,
		materialize:     p.materializePartial,
	}
	renderCtx := builder.Build(ctx, clone, callLocals)

	ext := p.engines.ResolveExtension(override, clone, callLocals, p.opts.DefaultEngine)
	if ext == "" {
		return "", fmt.Errorf("render: %w: no extension resolved for %q", ErrMissingEngine, clone.Key)
	}
	entry, err := p.engines.Get(ext)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	delims, err := p.engines.ResolveDelims(clone, callLocals, ext)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}

	opts := engine.Options{
		Context: renderCtx,
		Helpers: p.bindHelpers(ctx, resolver),
		Delims:  delims,
		Extra:   mergeExtra(entry.Extra, clone.Options),
	}

	fp := fingerprint(clone.Content, ext, delims)
	var compiled view.CompiledFunc
	final := clone.Content
	if !async && record.Compiled != nil && record.CompiledFingerprint == fp {
		compiled = record.Compiled
	} else {
		final, err = p.layouts().Apply(clone, roles, renderCtx, clone.Content)
		if err != nil {
			return "", err
		}
		if compiler, ok := entry.Adapter.(engine.Compiler); ok && !async {
			compiled, err = compiler.Compile(final, engine.Options{Helpers: opts.Helpers, Delims: delims, Extra: opts.Extra})
			if err != nil {
				return "", fmt.Errorf("render: compile %q: %w: %w", clone.Key, ErrEngineRender, err)
			}
			clone.Compiled = compiled
			clone.CompiledFingerprint = fp
			// Benign idempotent cache write; concurrent renders may race to
			// store an equivalent function.
			record.Compiled = compiled
			record.CompiledFingerprint = fp
		}
	}

	var out string
	if async {
		out, err = p.invokeAsync(ctx, entry, final, opts)
	} else {
		out, err = p.invokeSync(entry, compiled, final, renderCtx, opts)
	}
	if err != nil {
		return "", err
	}

	out, err = resolver.Resolve(ctx, out)
	if err != nil {
		return "", err
	}

	if delims.Escape != nil {
		out = strings.ReplaceAll(out, delims.Escape.From, delims.Escape.To)
	}

	result := clone.Clone()
	result.Content = out
	p.middleware.Run(After, result, p.logger)
	return result.Content, nil
}

func (p *Pipeline) invokeSync(entry *engine.Entry, compiled view.CompiledFunc, content string, renderCtx map[string]any, opts engine.Options) (string, error) {
	if compiled != nil {
		out, err := compiled(renderCtx, opts.Helpers)
		if err != nil {
			return "", fmt.Errorf("render: %w: %w", ErrEngineRender, err)
		}
		return out, nil
	}
	renderer, ok := entry.Adapter.(engine.SyncRenderer)
	if !ok {
		return "", fmt.Errorf("render: %w: %q cannot render synchronously", ErrEngineCapability, entry.Adapter.Name())
	}
	out, err := renderer.RenderSync(content, opts)
	if err != nil {
		return "", fmt.Errorf("render: %w: %w", ErrEngineRender, err)
	}
	return out, nil
}

func (p *Pipeline) invokeAsync(ctx context.Context, entry *engine.Entry, content string, opts engine.Options) (string, error) {
	renderer, ok := entry.Adapter.(engine.AsyncRenderer)
	if !ok {
		return "", fmt.Errorf("render: %w: %q cannot render asynchronously", ErrEngineCapability, entry.Adapter.Name())
	}

	type result struct {
		out string
		err error
	}
	ch := make(chan result, 1)
	renderer.RenderAsync(ctx, content, opts, func(out string, err error) {
		select {
		case ch <- result{out: out, err: err}:
		default:
		}
	})
	select {
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("render: %w: %w", ErrEngineRender, res.err)
		}
		return res.out, nil
	case <-ctx.Done():
		return "", fmt.Errorf("render: await engine: %w", ctx.Err())
	}
}

func (p *Pipeline) layouts() *layoutResolver {
	return &layoutResolver{
		collections:   p.collections,
		engines:       p.engines,
		defaultLayout: p.opts.DefaultLayout,
		strict:        p.opts.StrictErrors,
		logger:        p.logger,
	}
}

// materializePartial renders a partial's own content for the context's
// partial bucket. Always recoverable: any failure falls back to the raw
// content and logs.
func (p *Pipeline) materializePartial(ctx context.Context, col *collection.Collection, t *view.Template) string {
	ext := p.engines.ResolveExtension("", t, nil, p.opts.DefaultEngine)
	if ext == "" || !p.engines.Has(ext) {
		return t.Content
	}
	entry, err := p.engines.Get(ext)
	if err != nil {
		return t.Content
	}
	renderer, ok := entry.Adapter.(engine.SyncRenderer)
	if !ok {
		return t.Content
	}
	delims, err := p.engines.ResolveDelims(t, nil, ext)
	if err != nil {
		p.logger.Debugf("render: partial %s/%s delimiters: %v", col.Name, t.Key, err)
		return t.Content
	}

	pctx := p.globalSnapshot()
	mergeInto(pctx, t.Locals)
	mergeInto(pctx, t.Data)

	out, err := renderer.RenderSync(t.Content, engine.Options{
		Context: pctx,
		Delims:  delims,
		Extra:   mergeExtra(entry.Extra, t.Options),
	})
	if err != nil {
		p.logger.Debugf("render: materialize partial %s/%s: %v", col.Name, t.Key, err)
		return t.Content
	}
	return out
}

// bindHelpers builds the helper mapping handed to engines for one render.
// Sync helpers run inline; async helpers emit placeholder tokens resolved
// after the engine returns.
func (p *Pipeline) bindHelpers(ctx context.Context, resolver *helpers.Resolver) map[string]any {
	bound := make(map[string]any)
	for _, name := range p.syncHelpers.Names() {
		fn, err := p.syncHelpers.Get(name)
		if err != nil {
			continue
		}
		name := name
		bound[name] = func(args ...any) (string, error) {
			key, locals := splitHelperArgs(args)
			out, err := fn(key, locals)
			if err != nil {
				if errors.Is(err, helpers.ErrNotFound) && !p.opts.StrictErrors {
					p.logger.Warnf("render: helper %q: %v", name, err)
					return "", nil
				}
				return "", err
			}
			return out, nil
		}
	}
	for _, name := range p.asyncHelpers.Names() {
		fn, err := p.asyncHelpers.Get(name)
		if err != nil {
			continue
		}
		name := name
		bound[name] = func(args ...any) (string, error) {
			key, locals := splitHelperArgs(args)
			token := resolver.Schedule(ctx, func(done func(string, error)) {
				fn(ctx, key, locals, func(out string, err error) {
					if err != nil && errors.Is(err, helpers.ErrNotFound) && !p.opts.StrictErrors {
						p.logger.Warnf("render: async helper %q: %v", name, err)
						done("", nil)
						return
					}
					done(out, err)
				})
			})
			return token, nil
		}
	}
	return bound
}

func splitHelperArgs(args []any) (string, map[string]any) {
	var (
		key    string
		locals map[string]any
	)
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			if key == "" {
				key = v
			}
		case map[string]any:
			if locals == nil {
				locals = v
			}
		}
	}
	return key, locals
}

func mergeExtra(engineExtra, templateOpts map[string]any) map[string]any {
	if len(engineExtra) == 0 && len(templateOpts) == 0 {
		return nil
	}
	out := make(map[string]any, len(engineExtra)+len(templateOpts))
	for k, v := range engineExtra {
		out[k] = v
	}
	for k, v := range templateOpts {
		out[k] = v
	}
	return out
}

func fingerprint(content, ext string, d *delim.Set) string {
	return ext + "\x00" + d.Open + "\x00" + d.Close + "\x00" + content
}
