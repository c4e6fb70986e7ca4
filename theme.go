package views

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// WithThemeSelector resolves a theme/variant pair through a go-theme
// selector at wiring time and seeds the global context with the result
// under the "theme" key.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(v *Views) {
		v.themeSeed = func() (map[string]any, error) {
			selection, err := selector.Select(name, variant)
			if err != nil {
				return nil, fmt.Errorf("views: select theme %s/%s: %w", name, variant, err)
			}
			return themeGlobals(selection)
		}
	}
}

// WithThemeSelection seeds the global context from an already-resolved
// selection.
func WithThemeSelection(selection *theme.Selection) Option {
	return func(v *Views) {
		v.themeSeed = func() (map[string]any, error) {
			return themeGlobals(selection)
		}
	}
}

// themeGlobals flattens a selection into template-facing data: name,
// variant, merged tokens (variant overrides base), css custom properties
// derived from the tokens, template overrides, and resolved asset URLs.
func themeGlobals(selection *theme.Selection) (map[string]any, error) {
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("views: theme selection has no manifest")
	}
	manifest := selection.Manifest

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	templates := make(map[string]string, len(manifest.Templates))
	for key, value := range manifest.Templates {
		templates[key] = value
	}
	assets := make(map[string]string, len(manifest.Assets.Files))
	for key, file := range manifest.Assets.Files {
		assets[key] = assetURL(manifest.Assets.Prefix, file)
	}

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
		for key, value := range variant.Templates {
			templates[key] = value
		}
		prefix := variant.Assets.Prefix
		if prefix == "" {
			prefix = manifest.Assets.Prefix
		}
		for key, file := range variant.Assets.Files {
			assets[key] = assetURL(prefix, file)
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return map[string]any{
		"theme": map[string]any{
			"name":      selection.Theme,
			"variant":   selection.Variant,
			"tokens":    tokens,
			"cssVars":   cssVars,
			"templates": templates,
			"assets":    assets,
		},
	}, nil
}

func assetURL(prefix, file string) string {
	if prefix == "" {
		return file
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(file, "/")
}
