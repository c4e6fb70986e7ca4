package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	views "github.com/goliatone/go-views"
	"github.com/goliatone/go-views/pkg/collection"
	"github.com/goliatone/go-views/pkg/config"
	"github.com/goliatone/go-views/pkg/view"
)

func main() {
	configPath := flag.String("config", "", "configuration file (.yml, .yaml or .toml)")
	templateDir := flag.String("templates", "", "directory of templates loaded into the pages collection")
	layoutDir := flag.String("layouts", "", "directory of templates loaded into the layouts collection")
	partialDir := flag.String("partials", "", "directory of templates loaded into the partials collection")
	target := flag.String("target", "", "template key or inline content to render")
	localsJSON := flag.String("locals", "", "call locals as a JSON object")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	if strings.TrimSpace(*target) == "" {
		log.Fatal("a -target is required")
	}

	options := []views.Option{}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		options = append(options, views.WithConfig(cfg))
	}

	system, err := views.New(options...)
	if err != nil {
		log.Fatalf("Failed to wire views: %v", err)
	}

	pages, err := system.Declare("page", collection.Options{IsRenderable: true})
	if err != nil {
		log.Fatalf("Failed to declare pages: %v", err)
	}
	layouts, err := system.Declare("layout", collection.Options{IsLayout: true})
	if err != nil {
		log.Fatalf("Failed to declare layouts: %v", err)
	}
	partials, err := system.Declare("partial", collection.Options{IsPartial: true})
	if err != nil {
		log.Fatalf("Failed to declare partials: %v", err)
	}

	if err := loadDir(pages, *templateDir); err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	if err := loadDir(layouts, *layoutDir); err != nil {
		log.Fatalf("Failed to load layouts: %v", err)
	}
	if err := loadDir(partials, *partialDir); err != nil {
		log.Fatalf("Failed to load partials: %v", err)
	}

	locals := map[string]any{}
	if *localsJSON != "" {
		if err := json.Unmarshal([]byte(*localsJSON), &locals); err != nil {
			log.Fatalf("Failed to parse locals: %v", err)
		}
	}

	rendered, err := system.RenderSync(context.Background(), *target, locals)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Rendered output written to %s\n", *output)
	} else {
		fmt.Println(rendered)
	}
}

// loadDir registers every regular file under dir, keyed by its path relative
// to dir without the extension.
func loadDir(accessors *collection.Accessors, dir string) error {
	if dir == "" {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		ext := filepath.Ext(rel)
		key := strings.TrimSuffix(filepath.ToSlash(rel), ext)
		return accessors.Add(views.ByObject(view.Template{
			Key:     key,
			Path:    path,
			Content: string(raw),
		}))
	})
}
