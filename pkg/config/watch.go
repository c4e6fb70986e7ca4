package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file whenever it changes and reports each result to
// onChange (including reload errors, with the previous Config zeroed). It
// returns a stop function that releases the watcher. Watching covers the
// file's directory so editors that replace-on-save are still observed.
func Watch(path string, onChange func(Config, error)) (func() error, error) {
	if onChange == nil {
		return nil, fmt.Errorf("config: onChange is required")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("config: watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				onChange(Load(path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onChange(Config{}, fmt.Errorf("config: watcher: %w", err))
			}
		}
	}()
	return watcher.Close, nil
}
