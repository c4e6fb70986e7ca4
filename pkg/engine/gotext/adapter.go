// Package gotext adapts text/template to the engine contract. It honors the
// resolved delimiter set through template.Delims and exposes bound helpers
// as template functions, so the same helper surface works here as in any
// other engine.
package gotext

import (
	"context"
	"strings"
	"text/template"

	"github.com/goliatone/go-views/pkg/engine"
	"github.com/goliatone/go-views/pkg/view"
)

// Engine renders Go text templates. It implements compile, sync and async
// entry points.
type Engine struct{}

// New constructs the adapter.
func New() *Engine {
	return &Engine{}
}

// Name identifies the adapter in capability errors.
func (e *Engine) Name() string { return "gotext" }

// Compile parses content once. The returned function re-binds helpers on
// every call; helper names must already exist at compile time for parse
// resolution, which holds because registries are populated during setup.
func (e *Engine) Compile(content string, opts engine.Options) (view.CompiledFunc, error) {
	tmpl, err := e.parse(content, opts)
	if err != nil {
		return nil, err
	}
	return func(data map[string]any, helpers map[string]any) (string, error) {
		instance, err := tmpl.Clone()
		if err != nil {
			return "", err
		}
		if len(helpers) > 0 {
			instance = instance.Funcs(funcMap(helpers))
		}
		var buf strings.Builder
		if err := instance.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}, nil
}

// RenderSync parses and executes content in one blocking call.
func (e *Engine) RenderSync(content string, opts engine.Options) (string, error) {
	tmpl, err := e.parse(content, opts)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, opts.Context); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderAsync executes off the calling goroutine and reports through done
// exactly once.
func (e *Engine) RenderAsync(ctx context.Context, content string, opts engine.Options, done func(string, error)) {
	if done == nil {
		done = func(string, error) {}
	}
	go func() {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				done("", err)
				return
			}
		}
		out, err := e.RenderSync(content, opts)
		done(out, err)
	}()
}

func (e *Engine) parse(content string, opts engine.Options) (*template.Template, error) {
	open, close := "{{", "}}"
	if opts.Delims != nil {
		open, close = opts.Delims.Open, opts.Delims.Close
	}
	tmpl := template.New("view").Delims(open, close)
	if len(opts.Helpers) > 0 {
		tmpl = tmpl.Funcs(funcMap(opts.Helpers))
	}
	parsed, err := tmpl.Parse(content)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func funcMap(helpers map[string]any) template.FuncMap {
	out := make(template.FuncMap, len(helpers))
	for name, fn := range helpers {
		if fn == nil {
			continue
		}
		out[name] = fn
	}
	return out
}

var (
	_ engine.Compiler      = (*Engine)(nil)
	_ engine.SyncRenderer  = (*Engine)(nil)
	_ engine.AsyncRenderer = (*Engine)(nil)
)
