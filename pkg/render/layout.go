package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-views/pkg/collection"
	"github.com/goliatone/go-views/pkg/engine"
	"github.com/goliatone/go-views/pkg/view"
)

// bodyTag is the expression layouts use to mark where wrapped content goes.
// The surrounding tokens come from the layout's resolved delimiter set.
const bodyTag = "body"

// layoutResolver walks a template's layout chain and recursively wraps
// content in each ancestor, bottom up. The chain is user-declared and must
// be acyclic; a revisited layout is a fatal error.
type layoutResolver struct {
	collections   *collection.Registry
	engines       *engine.Registry
	defaultLayout string
	strict        bool
	logger        Logger
}

// disabled reports layout keys that explicitly opt out of wrapping.
func disabled(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "none", "false", "null":
		return true
	}
	return false
}

// resolveKey picks the starting layout for a template: its own declared
// layout, then a context-provided layout, then the global default. Partials
// only inherit the global default when they declare a layout explicitly.
func (r *layoutResolver) resolveKey(t *view.Template, roles collection.Roles, renderCtx map[string]any) string {
	if t != nil && t.Layout != "" {
		return t.Layout
	}
	if renderCtx != nil {
		if key, ok := renderCtx["layout"].(string); ok && key != "" {
			return key
		}
	}
	if roles.Partial {
		return ""
	}
	return r.defaultLayout
}

// Apply wraps content in the resolved layout chain and returns the final
// string. Missing layouts pass content through unchanged unless strict mode
// is on; cycles always fail.
func (r *layoutResolver) Apply(t *view.Template, roles collection.Roles, renderCtx map[string]any, content string) (string, error) {
	current := r.resolveKey(t, roles, renderCtx)
	if current == "" || disabled(current) {
		return content, nil
	}

	visited := make(map[string]bool)
	for current != "" && !disabled(current) {
		if visited[current] {
			return "", fmt.Errorf("render: %w: %q revisited", ErrLayoutCycle, current)
		}
		visited[current] = true

		_, layout := r.collections.FindLayout(current)
		if layout == nil {
			if r.strict {
				return "", fmt.Errorf("render: layout %w: %s", ErrMissingTemplate, current)
			}
			r.logger.Debugf("render: layout %q not found, content passes through", current)
			return content, nil
		}

		delims, err := r.engines.ResolveDelims(layout, nil, layout.Ext())
		if err != nil {
			return "", fmt.Errorf("render: layout %q delimiters: %w", current, err)
		}
		marker := delims.TagMatcher(bodyTag)
		if !marker.MatchString(layout.Content) {
			r.logger.Warnf("render: layout %q has no %s marker, skipping", current, delims.Wrap(bodyTag))
		} else {
			content = marker.ReplaceAllLiteralString(layout.Content, content)
		}

		current = layout.Layout
	}
	return content, nil
}
