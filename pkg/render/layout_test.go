package render

import (
	"errors"
	"testing"

	"github.com/goliatone/go-views/pkg/collection"
	"github.com/goliatone/go-views/pkg/engine"
	"github.com/goliatone/go-views/pkg/view"
)

func layoutFixture(t *testing.T, templates ...view.Template) *collection.Registry {
	t.Helper()
	registry := collection.NewRegistry(nil)
	layouts, err := registry.Declare("layout", collection.Options{IsLayout: true})
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	for _, tmpl := range templates {
		if err := layouts.Add(view.ByObject(tmpl)); err != nil {
			t.Fatalf("add %s: %v", tmpl.Key, err)
		}
	}
	return registry
}

func newLayoutResolver(registry *collection.Registry) *layoutResolver {
	return &layoutResolver{
		collections: registry,
		engines:     engine.NewRegistry(),
		logger:      NopLogger(),
	}
}

func TestLayoutResolver_WrapsChainBottomUp(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{Key: "a", Content: "a {% body %} a", Layout: "b"},
		view.Template{Key: "b", Content: "b {% body %} b", Layout: "base"},
		view.Template{Key: "base", Content: "outer {% body %} outer"},
	)
	resolver := newLayoutResolver(registry)

	record := &view.Template{Key: "home", Layout: "a"}
	out, err := resolver.Apply(record, collection.Roles{Renderable: true}, nil, "inner")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != "outer b a inner a b outer" {
		t.Fatalf("unexpected composition: %q", out)
	}
}

func TestLayoutResolver_SelfCycleFails(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{Key: "a", Content: "a {% body %} a", Layout: "a"},
	)
	resolver := newLayoutResolver(registry)

	_, err := resolver.Apply(&view.Template{Key: "home", Layout: "a"}, collection.Roles{Renderable: true}, nil, "inner")
	if !errors.Is(err, ErrLayoutCycle) {
		t.Fatalf("expected ErrLayoutCycle, got %v", err)
	}
}

func TestLayoutResolver_IndirectCycleFails(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{Key: "a", Content: "a {% body %} a", Layout: "b"},
		view.Template{Key: "b", Content: "b {% body %} b", Layout: "a"},
	)
	resolver := newLayoutResolver(registry)

	_, err := resolver.Apply(&view.Template{Key: "home", Layout: "a"}, collection.Roles{Renderable: true}, nil, "inner")
	if !errors.Is(err, ErrLayoutCycle) {
		t.Fatalf("expected ErrLayoutCycle, got %v", err)
	}
}

func TestLayoutResolver_MissingLayoutLaxPassesThrough(t *testing.T) {
	resolver := newLayoutResolver(layoutFixture(t))

	out, err := resolver.Apply(&view.Template{Key: "home", Layout: "ghost"}, collection.Roles{Renderable: true}, nil, "inner")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != "inner" {
		t.Fatalf("content should pass through unchanged, got %q", out)
	}
}

func TestLayoutResolver_MissingLayoutStrictFails(t *testing.T) {
	resolver := newLayoutResolver(layoutFixture(t))
	resolver.strict = true

	_, err := resolver.Apply(&view.Template{Key: "home", Layout: "ghost"}, collection.Roles{Renderable: true}, nil, "inner")
	if !errors.Is(err, ErrMissingTemplate) {
		t.Fatalf("expected ErrMissingTemplate, got %v", err)
	}
}

func TestLayoutResolver_DisabledKeysSkipWrapping(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{Key: "base", Content: "outer {% body %} outer"},
	)
	resolver := newLayoutResolver(registry)
	resolver.defaultLayout = "base"

	for _, key := range []string{"none", "false", "null", "NONE"} {
		out, err := resolver.Apply(&view.Template{Key: "home", Layout: key}, collection.Roles{Renderable: true}, nil, "inner")
		if err != nil {
			t.Fatalf("apply with %q: %v", key, err)
		}
		if out != "inner" {
			t.Fatalf("layout %q should disable wrapping, got %q", key, out)
		}
	}
}

func TestLayoutResolver_DefaultLayoutAppliesToRenderables(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{Key: "base", Content: "outer {% body %} outer"},
	)
	resolver := newLayoutResolver(registry)
	resolver.defaultLayout = "base"

	out, err := resolver.Apply(&view.Template{Key: "home"}, collection.Roles{Renderable: true}, nil, "inner")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != "outer inner outer" {
		t.Fatalf("default layout not applied: %q", out)
	}
}

func TestLayoutResolver_PartialsSkipDefaultLayout(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{Key: "base", Content: "outer {% body %} outer"},
	)
	resolver := newLayoutResolver(registry)
	resolver.defaultLayout = "base"

	out, err := resolver.Apply(&view.Template{Key: "nav"}, collection.Roles{Partial: true}, nil, "inner")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != "inner" {
		t.Fatalf("partials must not inherit the default layout, got %q", out)
	}

	// an explicit layout still wraps a partial
	out, err = resolver.Apply(&view.Template{Key: "nav", Layout: "base"}, collection.Roles{Partial: true}, nil, "inner")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != "outer inner outer" {
		t.Fatalf("explicit layout on partial lost: %q", out)
	}
}

func TestLayoutResolver_ContextProvidedLayout(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{Key: "article", Content: "article {% body %}"},
	)
	resolver := newLayoutResolver(registry)

	out, err := resolver.Apply(&view.Template{Key: "home"}, collection.Roles{Renderable: true}, map[string]any{"layout": "article"}, "inner")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != "article inner" {
		t.Fatalf("context layout not honored: %q", out)
	}
}

func TestLayoutResolver_LayoutWithoutMarkerSkipsWrap(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{Key: "broken", Content: "no marker here"},
	)
	resolver := newLayoutResolver(registry)

	out, err := resolver.Apply(&view.Template{Key: "home", Layout: "broken"}, collection.Roles{Renderable: true}, nil, "inner")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != "inner" {
		t.Fatalf("marker-less layout should leave content unchanged, got %q", out)
	}
}

func TestLayoutResolver_LayoutDelimitersFromOptions(t *testing.T) {
	registry := layoutFixture(t,
		view.Template{
			Key:     "base",
			Content: "outer <% body %> outer and {% body %}",
			Options: map[string]any{"delimiters": [2]string{"<%", "%>"}},
		},
	)
	resolver := newLayoutResolver(registry)

	out, err := resolver.Apply(&view.Template{Key: "home", Layout: "base"}, collection.Roles{Renderable: true}, nil, "inner")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != "outer inner outer and {% body %}" {
		t.Fatalf("layout's own delimiters should pick the marker, got %q", out)
	}
}
