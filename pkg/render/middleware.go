package render

import (
	"errors"
	"path"
	"sync"

	"github.com/goliatone/go-views/pkg/view"
)

// Phase says when a middleware runs relative to rendering.
type Phase int

const (
	// Before runs against the looked-up record before context building.
	Before Phase = iota
	// After runs against a result record carrying the rendered content.
	After
)

// MiddlewareFunc inspects or mutates a record and must call next exactly
// once, passing a non-nil error to report failure.
type MiddlewareFunc func(record *view.Template, next func(error))

type middlewareRoute struct {
	pattern string
	phase   Phase
	fn      MiddlewareFunc
}

// Middleware stores hooks registered against path patterns and runs the
// matching ones for a phase. Hook errors are reported to the logger, never
// propagated: one broken hook must not abort unrelated renders.
type Middleware struct {
	mu     sync.RWMutex
	routes []middlewareRoute
}

// NewMiddleware creates an empty middleware table.
func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Use registers fn for every record whose path matches pattern
// (path.Match syntax; the literal pattern also matches exactly).
func (m *Middleware) Use(pattern string, phase Phase, fn MiddlewareFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, middlewareRoute{pattern: pattern, phase: phase, fn: fn})
}

// Run executes every matching hook in registration order. Errors, including
// a hook that never calls next, are logged and swallowed.
func (m *Middleware) Run(phase Phase, record *view.Template, logger Logger) {
	if record == nil {
		return
	}
	m.mu.RLock()
	routes := make([]middlewareRoute, 0, len(m.routes))
	for _, route := range m.routes {
		if route.phase == phase {
			routes = append(routes, route)
		}
	}
	m.mu.RUnlock()

	for _, route := range routes {
		if !matchesPath(route.pattern, record.Path) {
			continue
		}
		runHook(route, record, logger)
	}
}

func runHook(route middlewareRoute, record *view.Template, logger Logger) {
	var (
		hookErr error
		called  bool
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Errorf("render: middleware %q panicked: %v", route.pattern, rec)
				hookErr = nil
				called = true
			}
		}()
		route.fn(record, func(err error) {
			if called {
				hookErr = errors.New("next called more than once")
				return
			}
			called = true
			hookErr = err
		})
	}()
	if !called {
		logger.Warnf("render: middleware %q never called next", route.pattern)
		return
	}
	if hookErr != nil {
		logger.Warnf("render: middleware %q: %v", route.pattern, hookErr)
	}
}

func matchesPath(pattern, p string) bool {
	if pattern == "" || pattern == p {
		return true
	}
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}
