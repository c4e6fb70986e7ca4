// Package raw is the identity engine: content passes through untouched.
// Useful for plain text or pre-rendered HTML collections that still want
// layout wrapping and middleware.
package raw

import (
	"context"

	"github.com/goliatone/go-views/pkg/engine"
)

// Engine returns content verbatim.
type Engine struct{}

// New constructs the adapter.
func New() *Engine {
	return &Engine{}
}

// Name identifies the adapter in capability errors.
func (e *Engine) Name() string { return "raw" }

// RenderSync returns the content unchanged.
func (e *Engine) RenderSync(content string, _ engine.Options) (string, error) {
	return content, nil
}

// RenderAsync reports the content unchanged through done.
func (e *Engine) RenderAsync(ctx context.Context, content string, _ engine.Options, done func(string, error)) {
	if done == nil {
		return
	}
	go func() {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				done("", err)
				return
			}
		}
		done(content, nil)
	}()
}

var (
	_ engine.SyncRenderer  = (*Engine)(nil)
	_ engine.AsyncRenderer = (*Engine)(nil)
)
