package delim

import (
	"strings"
	"testing"
)

func TestNewSet_RequiresTokens(t *testing.T) {
	if _, err := NewSet(".x", "", "%}"); err == nil {
		t.Fatal("expected error for empty open token")
	}
	if _, err := NewSet(".x", "{%", ""); err == nil {
		t.Fatal("expected error for empty close token")
	}
}

func TestNewSet_NormalizesExtension(t *testing.T) {
	set, err := NewSet("HTML", "<%", "%>")
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	if set.Extension != ".html" {
		t.Fatalf("expected dotted lower-case extension, got %q", set.Extension)
	}
}

func TestSet_MatcherToleratesWhitespace(t *testing.T) {
	set, err := NewSet(".x", "{%", "%}")
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	for _, input := range []string{"{%body%}", "{% body %}", "{%  body  %}"} {
		match := set.Matcher.FindStringSubmatch(input)
		if match == nil {
			t.Fatalf("matcher missed %q", input)
		}
		if match[1] != "body" {
			t.Fatalf("expected captured expression body, got %q", match[1])
		}
	}
}

func TestSet_Wrap(t *testing.T) {
	set, err := NewSet(".x", "<%", "%>")
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	if got := set.Wrap("body"); got != "<%body%>" {
		t.Fatalf("unexpected wrap result: %q", got)
	}
}

func TestSet_TagMatcher(t *testing.T) {
	set, err := NewSet(".x", "{%", "%}")
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	marker := set.TagMatcher("body")
	out := marker.ReplaceAllLiteralString("before {% body %} after", "CONTENT")
	if out != "before CONTENT after" {
		t.Fatalf("unexpected replacement: %q", out)
	}
	if marker.MatchString("{% not_body %}") {
		t.Fatal("tag matcher matched a different tag")
	}
}

func TestManager_ResolveFallsBackToDefault(t *testing.T) {
	mgr := NewManager()
	set := mgr.Resolve(".unknown")
	if set == nil {
		t.Fatal("expected fallback set")
	}
	if set.Open != "{%" || set.Close != "%}" {
		t.Fatalf("unexpected fallback tokens: %q %q", set.Open, set.Close)
	}
}

func TestManager_RegisterAndResolve(t *testing.T) {
	mgr := NewManager()
	if _, err := mgr.Register("njk", "<%", "%>"); err != nil {
		t.Fatalf("register: %v", err)
	}
	set := mgr.Resolve(".njk")
	if set.Open != "<%" || set.Close != "%>" {
		t.Fatalf("unexpected tokens: %q %q", set.Open, set.Close)
	}
	if got := mgr.Get(".missing"); got != nil {
		t.Fatal("expected nil for unregistered extension")
	}
}

func TestManager_SetDefault(t *testing.T) {
	mgr := NewManager()
	if err := mgr.SetDefault("[[", "]]"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	set := mgr.Resolve(".anything")
	if set.Open != "[[" || set.Close != "]]" {
		t.Fatalf("default not replaced: %q %q", set.Open, set.Close)
	}
}

func TestManager_MatcherEscapesRegexMeta(t *testing.T) {
	mgr := NewManager()
	set, err := mgr.Register(".q", "((", "))")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.Contains(set.Matcher.String(), `\(\(`) {
		t.Fatalf("open token not quoted in matcher: %s", set.Matcher)
	}
	if !set.Matcher.MatchString("(( name ))") {
		t.Fatal("matcher missed parenthesized tokens")
	}
}
