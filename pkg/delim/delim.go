package delim

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// DefaultExtension keys the fallback delimiter set.
const DefaultExtension = ".default"

// Escape rewrites one token to another after rendering, letting templates
// emit literal delimiter sequences.
type Escape struct {
	From string
	To   string
}

// Set is one opening/closing token pair plus the matcher derived from it.
type Set struct {
	Extension string
	Open      string
	Close     string
	// Matcher captures the expression between the tokens, tolerating inner
	// whitespace. Derived from Open/Close at construction.
	Matcher *regexp.Regexp
	Escape  *Escape
}

// NewSet derives a Set for the given extension and token pair.
func NewSet(extension, open, close string) (*Set, error) {
	if open == "" || close == "" {
		return nil, errors.New("delim: open and close tokens are required")
	}
	pattern, err := regexp.Compile(regexp.QuoteMeta(open) + `\s*(.+?)\s*` + regexp.QuoteMeta(close))
	if err != nil {
		return nil, fmt.Errorf("delim: derive matcher for %q %q: %w", open, close, err)
	}
	return &Set{
		Extension: normalizeExt(extension),
		Open:      open,
		Close:     close,
		Matcher:   pattern,
	}, nil
}

// Wrap surrounds an expression with this set's tokens.
func (s *Set) Wrap(expr string) string {
	return s.Open + expr + s.Close
}

// TagMatcher returns a matcher for one specific tag name, tolerating inner
// whitespace. Layout resolution uses it to find the body marker.
func (s *Set) TagMatcher(tag string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(s.Open) + `\s*` + regexp.QuoteMeta(tag) + `\s*` + regexp.QuoteMeta(s.Close))
}

// Manager stores delimiter sets keyed by extension. The default set exists
// from construction and resolution falls back to it.
type Manager struct {
	mu   sync.RWMutex
	sets map[string]*Set
}

// NewManager creates a manager seeded with the default `{%`/`%}` pair.
func NewManager() *Manager {
	fallback, err := NewSet(DefaultExtension, "{%", "%}")
	if err != nil {
		panic(err)
	}
	return &Manager{
		sets: map[string]*Set{DefaultExtension: fallback},
	}
}

// Register stores a set for one extension, replacing any previous set.
func (m *Manager) Register(extension, open, close string) (*Set, error) {
	set, err := NewSet(extension, open, close)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[set.Extension] = set
	return set, nil
}

// SetDefault replaces the fallback set.
func (m *Manager) SetDefault(open, close string) error {
	_, err := m.Register(DefaultExtension, open, close)
	return err
}

// Get returns the set registered for the extension, or nil.
func (m *Manager) Get(extension string) *Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets[normalizeExt(extension)]
}

// Resolve returns the set for the extension, falling back to the default.
func (m *Manager) Resolve(extension string) *Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if set, ok := m.sets[normalizeExt(extension)]; ok {
		return set
	}
	return m.sets[DefaultExtension]
}

// Default returns the fallback set.
func (m *Manager) Default() *Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets[DefaultExtension]
}

func normalizeExt(extension string) string {
	trimmed := strings.TrimSpace(extension)
	if trimmed == "" {
		return DefaultExtension
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return strings.ToLower(trimmed)
}
