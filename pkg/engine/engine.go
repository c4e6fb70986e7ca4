package engine

import (
	"context"

	"github.com/goliatone/go-views/pkg/delim"
	"github.com/goliatone/go-views/pkg/view"
)

// Options carries everything an adapter may need for one compile or render
// call. Helpers are already bound to the current render; Delims is the
// resolved delimiter set for the template's extension.
type Options struct {
	// Context is the merged data mapping for the render. Compile calls
	// receive it empty; the compiled function is handed the context later.
	Context map[string]any
	// Helpers maps helper names to callables usable inside the engine.
	Helpers map[string]any
	// Delims is the delimiter set resolved for this render.
	Delims *delim.Set
	// Extra holds engine-registered defaults merged with template options.
	Extra map[string]any
}

// Adapter is the minimal engine contract. An adapter must additionally
// implement SyncRenderer or AsyncRenderer (or both) to be usable; Compiler
// is optional and only enables memoization.
type Adapter interface {
	Name() string
}

// Compiler parses content once and returns a function that renders it
// against a context.
type Compiler interface {
	Compile(content string, opts Options) (view.CompiledFunc, error)
}

// SyncRenderer renders content in a single blocking call.
type SyncRenderer interface {
	RenderSync(content string, opts Options) (string, error)
}

// AsyncRenderer renders content and reports the result through done, which
// must be invoked exactly once. Implementations may call done from another
// goroutine.
type AsyncRenderer interface {
	RenderAsync(ctx context.Context, content string, opts Options, done func(string, error))
}
