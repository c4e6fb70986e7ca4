// Package pongo adapts flosch/pongo2 to the engine contract. pongo2 owns
// its own delimiter syntax, so the resolved delimiter set only affects the
// layout body marker, not interpolation. The adapter compiles through the
// template set and memoizes nothing itself; the pipeline caches compiled
// functions on the template record.
package pongo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-views/pkg/engine"
	"github.com/goliatone/go-views/pkg/view"
)

// Engine renders pongo2 templates. It implements compile and sync render.
type Engine struct {
	set *pongo2.TemplateSet
}

// New constructs the adapter with a fresh template set.
func New() *Engine {
	return &Engine{
		set: pongo2.NewSet("views", pongo2.MustNewLocalFileSystemLoader("")),
	}
}

// Name identifies the adapter in capability errors.
func (e *Engine) Name() string { return "pongo" }

// Compile parses content once and returns a function executing it against
// per-call data and helpers.
func (e *Engine) Compile(content string, _ engine.Options) (view.CompiledFunc, error) {
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return nil, fmt.Errorf("pongo: parse template: %w", err)
	}
	return func(data map[string]any, helpers map[string]any) (string, error) {
		out, err := tmpl.Execute(buildContext(data, helpers))
		if err != nil {
			return "", fmt.Errorf("pongo: execute template: %w", err)
		}
		return out, nil
	}, nil
}

// RenderSync parses and executes content in one blocking call.
func (e *Engine) RenderSync(content string, opts engine.Options) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template: %w", err)
	}
	out, err := tmpl.Execute(buildContext(opts.Context, opts.Helpers))
	if err != nil {
		return "", fmt.Errorf("pongo: execute template: %w", err)
	}
	return out, nil
}

// RegisterFilter exposes pongo2 filter registration through a plain Go
// function signature.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext seeds values available to every template of this engine.
func (e *Engine) GlobalContext(data map[string]any) {
	if e == nil || e.set == nil || len(data) == 0 {
		return
	}
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(pongo2.Context(data))
}

func buildContext(data map[string]any, helpers map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(data)+len(helpers))
	for key, value := range data {
		if strings.TrimSpace(key) == "" {
			continue
		}
		ctx[key] = value
	}
	for name, fn := range helpers {
		if fn == nil {
			continue
		}
		ctx[name] = fn
	}
	return ctx
}

var (
	_ engine.Compiler     = (*Engine)(nil)
	_ engine.SyncRenderer = (*Engine)(nil)
)
