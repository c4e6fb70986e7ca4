// Package config loads pipeline configuration from YAML or TOML files and
// can watch a file for changes. Configuration covers behavior flags, the
// default layout/engine, per-extension delimiters, and seed data for the
// global context; collections, engines, and helpers are always wired in
// code.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Delimiters is a raw open/close token pair.
type Delimiters struct {
	Open  string `yaml:"open" toml:"open"`
	Close string `yaml:"close" toml:"close"`
}

// Config mirrors the pipeline options plus delimiter and global-data seeds.
type Config struct {
	// StrictErrors upgrades recoverable lookup and helper misses to fatal
	// errors.
	StrictErrors bool `yaml:"strict_errors" toml:"strict_errors"`
	// PreferLocals makes template locals win over template data on key
	// collisions.
	PreferLocals bool `yaml:"prefer_locals" toml:"prefer_locals"`
	// GroupPartialsByCollection keeps partial collections under their own
	// names in the render context instead of one "partials" bucket.
	GroupPartialsByCollection bool `yaml:"group_partials_by_collection" toml:"group_partials_by_collection"`
	// DefaultLayout names the layout wrapped around renderable templates
	// that do not pick their own.
	DefaultLayout string `yaml:"default_layout" toml:"default_layout"`
	// DefaultEngine is the fallback engine extension.
	DefaultEngine string `yaml:"default_engine" toml:"default_engine"`
	// Delimiters maps extensions to token pairs registered at wiring time.
	Delimiters map[string]Delimiters `yaml:"delimiters" toml:"delimiters"`
	// Global seeds the shared context data.
	Global map[string]any `yaml:"global" toml:"global"`
}

// Default returns the zero-configuration baseline.
func Default() Config {
	return Config{
		DefaultEngine: ".gotext",
	}
}

// Load reads a configuration file, choosing the format by extension
// (.yml/.yaml or .toml).
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes raw bytes in the format named by ext.
func Parse(raw []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse toml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported format %q", ext)
	}
	return cfg, nil
}
