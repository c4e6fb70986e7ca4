package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTemplate_Validate(t *testing.T) {
	if err := (&Template{Key: "home"}).Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
	if err := (&Template{}).Validate(); err == nil {
		t.Fatal("expected error for missing key")
	}
	if err := (&Template{Key: "   "}).Validate(); err == nil {
		t.Fatal("expected error for blank key")
	}
	var nilRecord *Template
	if err := nilRecord.Validate(); err == nil {
		t.Fatal("expected error for nil record")
	}
}

func TestTemplate_Ext(t *testing.T) {
	cases := []struct {
		name string
		tmpl Template
		want string
	}{
		{"from path", Template{Key: "a", Path: "pages/home.html"}, ".html"},
		{"no extension", Template{Key: "a", Path: "pages/home"}, ""},
		{"explicit option", Template{Key: "a", Path: "home.html", Options: map[string]any{"ext": "pongo"}}, ".pongo"},
		{"dotted option", Template{Key: "a", Options: map[string]any{"ext": ".tmpl"}}, ".tmpl"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tmpl.Ext(); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTemplate_Engine(t *testing.T) {
	tmpl := Template{Key: "a", Options: map[string]any{"engine": "pongo"}}
	if got := tmpl.Engine(); got != "pongo" {
		t.Fatalf("want pongo, got %q", got)
	}
	if got := (&Template{Key: "a"}).Engine(); got != "" {
		t.Fatalf("expected empty engine, got %q", got)
	}
}

func TestTemplate_CloneDetachesMaps(t *testing.T) {
	original := &Template{
		Key:     "home",
		Content: "hello",
		Data:    map[string]any{"title": "Home", "nested": map[string]any{"a": 1}},
		Locals:  map[string]any{"user": "ada"},
	}
	clone := original.Clone()

	clone.Data["title"] = "Changed"
	clone.Data["nested"].(map[string]any)["a"] = 2
	clone.Locals["user"] = "grace"

	if original.Data["title"] != "Home" {
		t.Fatal("clone mutation leaked into original data")
	}
	if original.Data["nested"].(map[string]any)["a"] != 1 {
		t.Fatal("clone mutation leaked into nested data")
	}
	if original.Locals["user"] != "ada" {
		t.Fatal("clone mutation leaked into locals")
	}
}

func TestByKeyValue_Normalize(t *testing.T) {
	records, err := ByKeyValue("nav", "<nav/>", map[string]any{"active": "home"}).Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	record := records[0]
	if record.Key != "nav" || record.Content != "<nav/>" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Path != "nav" {
		t.Fatalf("path should default to key, got %q", record.Path)
	}
	if diff := cmp.Diff(map[string]any{"active": "home"}, record.Locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestByObject_Normalize(t *testing.T) {
	records, err := ByObject(Template{Key: "home", Content: "hi", Path: "pages/home.html"}).Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if records[0].Path != "pages/home.html" {
		t.Fatalf("explicit path lost: %q", records[0].Path)
	}

	if _, err := ByObject(Template{Content: "keyless"}).Normalize(); err == nil {
		t.Fatal("expected error for record without key")
	}
}

func TestByObjects_NormalizeInheritsMapKey(t *testing.T) {
	records, err := ByObjects(map[string]Template{
		"header": {Content: "<h1/>"},
		"footer": {Key: "footer", Content: "<f/>"},
	}).Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	keys := map[string]bool{}
	for _, record := range records {
		keys[record.Key] = true
	}
	if !keys["header"] || !keys["footer"] {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestByPattern_RequiresLoader(t *testing.T) {
	in := ByPattern("templates/*.html")
	if !in.IsPattern() {
		t.Fatal("expected pattern input")
	}
	if in.Pattern() != "templates/*.html" {
		t.Fatalf("pattern lost: %q", in.Pattern())
	}
	if _, err := in.Normalize(); err == nil {
		t.Fatal("pattern input should not normalize without a loader")
	}
}

func TestAddInput_ZeroValueInvalid(t *testing.T) {
	records, err := (AddInput{}).Normalize()
	// zero kind is key-value with an empty key
	if err == nil {
		t.Fatalf("expected error, got %d records", len(records))
	}
}
