package render

import (
	"errors"
	"testing"

	"github.com/goliatone/go-views/pkg/view"
)

func TestMiddleware_RunsMatchingPhase(t *testing.T) {
	mw := NewMiddleware()
	var calls []string
	mw.Use("", Before, func(record *view.Template, next func(error)) {
		calls = append(calls, "before")
		next(nil)
	})
	mw.Use("", After, func(record *view.Template, next func(error)) {
		calls = append(calls, "after")
		next(nil)
	})

	mw.Run(Before, &view.Template{Key: "home", Path: "pages/home.html"}, NopLogger())
	if len(calls) != 1 || calls[0] != "before" {
		t.Fatalf("expected only the before hook, got %v", calls)
	}
}

func TestMiddleware_PatternMatching(t *testing.T) {
	mw := NewMiddleware()
	var matched []string
	record := func(pattern string) MiddlewareFunc {
		return func(_ *view.Template, next func(error)) {
			matched = append(matched, pattern)
			next(nil)
		}
	}
	mw.Use("pages/*.html", Before, record("glob"))
	mw.Use("pages/home.html", Before, record("exact"))
	mw.Use("emails/*.html", Before, record("other"))
	mw.Use("", Before, record("all"))

	mw.Run(Before, &view.Template{Key: "home", Path: "pages/home.html"}, NopLogger())

	want := map[string]bool{"glob": true, "exact": true, "all": true}
	if len(matched) != len(want) {
		t.Fatalf("unexpected hook set: %v", matched)
	}
	for _, name := range matched {
		if !want[name] {
			t.Fatalf("hook %q should not have run", name)
		}
	}
}

func TestMiddleware_CanMutateRecord(t *testing.T) {
	mw := NewMiddleware()
	mw.Use("", Before, func(record *view.Template, next func(error)) {
		record.Content = "rewritten"
		next(nil)
	})

	record := &view.Template{Key: "home", Path: "home", Content: "original"}
	mw.Run(Before, record, NopLogger())
	if record.Content != "rewritten" {
		t.Fatalf("mutation lost: %q", record.Content)
	}
}

func TestMiddleware_ErrorsNeverPropagate(t *testing.T) {
	mw := NewMiddleware()
	var after bool
	mw.Use("", Before, func(_ *view.Template, next func(error)) {
		next(errors.New("hook failed"))
	})
	mw.Use("", Before, func(_ *view.Template, next func(error)) {
		after = true
		next(nil)
	})

	mw.Run(Before, &view.Template{Key: "home", Path: "home"}, NopLogger())
	if !after {
		t.Fatal("a failing hook must not stop later hooks")
	}
}

func TestMiddleware_PanicIsContained(t *testing.T) {
	mw := NewMiddleware()
	var after bool
	mw.Use("", Before, func(_ *view.Template, _ func(error)) {
		panic("boom")
	})
	mw.Use("", Before, func(_ *view.Template, next func(error)) {
		after = true
		next(nil)
	})

	mw.Run(Before, &view.Template{Key: "home", Path: "home"}, NopLogger())
	if !after {
		t.Fatal("a panicking hook must not stop later hooks")
	}
}

func TestMiddleware_HookThatNeverCallsNext(t *testing.T) {
	mw := NewMiddleware()
	mw.Use("", Before, func(_ *view.Template, _ func(error)) {})

	// must not hang or panic
	mw.Run(Before, &view.Template{Key: "home", Path: "home"}, NopLogger())
}

func TestMiddleware_NilHookIgnored(t *testing.T) {
	mw := NewMiddleware()
	mw.Use("", Before, nil)
	mw.Run(Before, &view.Template{Key: "home", Path: "home"}, NopLogger())
}
