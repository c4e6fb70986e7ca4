package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-views/pkg/delim"
	"github.com/goliatone/go-views/pkg/view"
)

// Sentinel errors surfaced by engine resolution.
var (
	// ErrNotFound reports that no adapter is registered for an extension.
	ErrNotFound = errors.New("engine not registered")
	// ErrCapability reports that the resolved adapter lacks the sync or
	// async method the caller needs.
	ErrCapability = errors.New("engine lacks required capability")
)

// Delimiters is the raw open/close pair accepted at registration time.
type Delimiters struct {
	Open  string
	Close string
}

// RegisterOptions configures an adapter registration.
type RegisterOptions struct {
	// Delimiters, when set, derives and stores a delimiter set for every
	// extension the adapter is registered under.
	Delimiters *Delimiters
	// Extra is merged into Options.Extra on every call to the adapter.
	Extra map[string]any
}

// Entry pairs a registered adapter with its per-engine defaults.
type Entry struct {
	Adapter Adapter
	Extra   map[string]any
}

// Registry maps canonical dotted extensions to engine adapters. It owns the
// delimiter manager so registrations can store per-extension delimiters in
// one step.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	delims  *delim.Manager
}

// NewRegistry creates an empty registry with a fresh delimiter manager.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		delims:  delim.NewManager(),
	}
}

// Delims exposes the delimiter manager for named-set registration.
func (r *Registry) Delims() *delim.Manager {
	return r.delims
}

// Register stores an adapter for one or more extensions. Extensions are
// normalized to a canonical dotted, lower-case form. Registering the same
// extension again replaces the previous adapter.
func (r *Registry) Register(adapter Adapter, opts RegisterOptions, extensions ...string) error {
	if adapter == nil {
		return errors.New("engine: adapter is required")
	}
	if _, sync := adapter.(SyncRenderer); !sync {
		if _, async := adapter.(AsyncRenderer); !async {
			return fmt.Errorf("engine: adapter %q implements neither sync nor async render", adapter.Name())
		}
	}
	if len(extensions) == 0 {
		return errors.New("engine: at least one extension is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, raw := range extensions {
		ext := NormalizeExt(raw)
		if ext == "" {
			return fmt.Errorf("engine: invalid extension %q", raw)
		}
		r.entries[ext] = &Entry{Adapter: adapter, Extra: opts.Extra}
		if opts.Delimiters != nil {
			if _, err := r.delims.Register(ext, opts.Delimiters.Open, opts.Delimiters.Close); err != nil {
				return fmt.Errorf("engine: delimiters for %s: %w", ext, err)
			}
		}
	}
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(adapter Adapter, opts RegisterOptions, extensions ...string) {
	if err := r.Register(adapter, opts, extensions...); err != nil {
		panic(err)
	}
}

// Get returns the entry for an extension or an ErrNotFound-wrapped error.
func (r *Registry) Get(extension string) (*Entry, error) {
	ext := NormalizeExt(extension)
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[ext]
	if !ok {
		return nil, fmt.Errorf("engine: %w: %s", ErrNotFound, ext)
	}
	return entry, nil
}

// Has reports whether an adapter is registered for the extension.
func (r *Registry) Has(extension string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[NormalizeExt(extension)]
	return ok
}

// List returns the sorted registered extensions.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.entries))
	for ext := range r.entries {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ResolveExtension picks the extension that selects the engine for one
// render. Precedence, first non-empty wins: explicit per-render override,
// template engine option, locals-provided engine or ext, template path
// extension, global default.
func (r *Registry) ResolveExtension(override string, t *view.Template, locals map[string]any, fallback string) string {
	if ext := NormalizeExt(override); ext != "" {
		return ext
	}
	if t != nil {
		if ext := NormalizeExt(t.Engine()); ext != "" {
			return ext
		}
	}
	if locals != nil {
		if name, ok := locals["engine"].(string); ok {
			if ext := NormalizeExt(name); ext != "" {
				return ext
			}
		}
		if name, ok := locals["ext"].(string); ok {
			if ext := NormalizeExt(name); ext != "" {
				return ext
			}
		}
	}
	if t != nil {
		if ext := NormalizeExt(t.Ext()); ext != "" {
			return ext
		}
	}
	return NormalizeExt(fallback)
}

// ResolveDelims picks the delimiter set for one render. Precedence:
// template or locals explicit delimiters, engine-registered delimiters for
// the resolved extension, then the manager's default set.
func (r *Registry) ResolveDelims(t *view.Template, locals map[string]any, extension string) (*delim.Set, error) {
	if t != nil {
		if pair, ok := delimitersFrom(t.Options); ok {
			return delim.NewSet(extension, pair.Open, pair.Close)
		}
	}
	if pair, ok := delimitersFrom(locals); ok {
		return delim.NewSet(extension, pair.Open, pair.Close)
	}
	return r.delims.Resolve(extension), nil
}

func delimitersFrom(m map[string]any) (Delimiters, bool) {
	if m == nil {
		return Delimiters{}, false
	}
	switch v := m["delimiters"].(type) {
	case Delimiters:
		return v, v.Open != "" && v.Close != ""
	case *Delimiters:
		if v == nil {
			return Delimiters{}, false
		}
		return *v, v.Open != "" && v.Close != ""
	case [2]string:
		return Delimiters{Open: v[0], Close: v[1]}, v[0] != "" && v[1] != ""
	case []string:
		if len(v) == 2 {
			return Delimiters{Open: v[0], Close: v[1]}, v[0] != "" && v[1] != ""
		}
	}
	return Delimiters{}, false
}

// NormalizeExt returns the canonical dotted lower-case form of an extension
// or engine name, or the empty string for blank input.
func NormalizeExt(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return strings.ToLower(trimmed)
}
