package view

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// CompiledFunc is an engine-produced function that renders pre-parsed
// content against the data and helper bindings of a single render call.
// Helpers are passed per call because they carry per-render state (async
// placeholder scheduling); a compiled function must never capture them.
type CompiledFunc func(data map[string]any, helpers map[string]any) (string, error)

// Template is one named content fragment inside a collection.
type Template struct {
	// Key uniquely identifies the template within its collection.
	Key string
	// Path is the origin of the content. Falls back to Key when the template
	// was registered without one.
	Path string
	// Content is the raw template body. Empty string is a valid body.
	Content string
	// Data carries metadata merged into the render context.
	Data map[string]any
	// Locals carries registration-time locals merged into the render context.
	Locals map[string]any
	// Options holds per-template render options such as an explicit engine.
	Options map[string]any
	// Layout names the layout template that wraps this one. Empty means no
	// explicit layout; partials additionally opt out of the global default.
	Layout string

	// Compiled caches the engine compile result. Derived state: it is reused
	// only while the fingerprint below still matches the template.
	Compiled CompiledFunc
	// CompiledFingerprint records the content/engine/delimiter combination the
	// cached Compiled function was built from.
	CompiledFingerprint string
}

// Validate reports whether the record can be stored and rendered.
func (t *Template) Validate() error {
	if t == nil {
		return errors.New("view: template is nil")
	}
	if strings.TrimSpace(t.Key) == "" {
		return errors.New("view: template key is required")
	}
	return nil
}

// Ext returns the dotted extension of the template's path, or the empty
// string when the path carries none.
func (t *Template) Ext() string {
	if t == nil {
		return ""
	}
	if ext, ok := t.Options["ext"].(string); ok && ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext
	}
	return filepath.Ext(t.Path)
}

// Engine returns the template's explicitly declared engine, if any.
func (t *Template) Engine() string {
	if t == nil {
		return ""
	}
	if name, ok := t.Options["engine"].(string); ok {
		return name
	}
	return ""
}

// Clone returns a deep copy of the record for use during one render call.
// The compiled cache is shared; everything else is detached so pipeline
// stages can mutate the clone freely.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := *t
	out.Data = cloneMap(t.Data)
	out.Locals = cloneMap(t.Locals)
	out.Options = cloneMap(t.Options)
	return &out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		if nested, ok := value.(map[string]any); ok {
			out[key] = cloneMap(nested)
			continue
		}
		out[key] = value
	}
	return out
}

func (t *Template) normalize() error {
	if err := t.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Path) == "" {
		t.Path = t.Key
	}
	return nil
}

type inputKind int

const (
	inputKeyValue inputKind = iota
	inputObject
	inputObjects
	inputPattern
)

// AddInput is the tagged variant accepted by collection add accessors. Use
// one of the constructors below; the zero value is invalid.
type AddInput struct {
	kind    inputKind
	key     string
	content string
	locals  map[string]any
	object  Template
	objects map[string]Template
	pattern string
}

// ByKeyValue registers a single template from a key and raw content.
func ByKeyValue(key, content string, locals map[string]any) AddInput {
	return AddInput{kind: inputKeyValue, key: key, content: content, locals: locals}
}

// ByObject registers a single fully-formed template record.
func ByObject(t Template) AddInput {
	return AddInput{kind: inputObject, object: t}
}

// ByObjects registers many records at once, keyed by template key. A record
// with an empty Key inherits its map key.
func ByObjects(templates map[string]Template) AddInput {
	return AddInput{kind: inputObjects, objects: templates}
}

// ByPattern defers registration to the collection's loader, passing the
// pattern through untouched.
func ByPattern(pattern string) AddInput {
	return AddInput{kind: inputPattern, pattern: pattern}
}

// IsPattern reports whether the input must be handled by a loader.
func (in AddInput) IsPattern() bool { return in.kind == inputPattern }

// Pattern returns the loader pattern for pattern inputs.
func (in AddInput) Pattern() string { return in.pattern }

// Normalize expands the input into canonical template records. Pattern
// inputs cannot be normalized here; callers route them to a loader first.
func (in AddInput) Normalize() ([]*Template, error) {
	switch in.kind {
	case inputKeyValue:
		t := &Template{Key: in.key, Content: in.content, Locals: cloneMap(in.locals)}
		if err := t.normalize(); err != nil {
			return nil, err
		}
		return []*Template{t}, nil
	case inputObject:
		t := in.object
		if err := (&t).normalize(); err != nil {
			return nil, err
		}
		return []*Template{&t}, nil
	case inputObjects:
		out := make([]*Template, 0, len(in.objects))
		for key, record := range in.objects {
			t := record
			if t.Key == "" {
				t.Key = key
			}
			if err := (&t).normalize(); err != nil {
				return nil, fmt.Errorf("view: template %q: %w", key, err)
			}
			out = append(out, &t)
		}
		return out, nil
	case inputPattern:
		return nil, errors.New("view: pattern input requires a loader")
	default:
		return nil, errors.New("view: invalid add input")
	}
}
