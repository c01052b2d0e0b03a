package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fluidkit/fluid-go/fluidgen"
)

// debounceDelay coalesces editor save bursts into one regeneration.
const debounceDelay = 300 * time.Millisecond

// watch runs one pass immediately, then reruns it whenever a Go file under
// the discovery root changes. It blocks until the watcher fails.
func watch(cfg *fluidgen.Config, run func() error) error {
	if err := run(); err != nil {
		slog.Error("initial generation failed", "error", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	root := cfg.Discovery.Root
	outRoot := filepath.Clean(cfg.Output.Root)
	if err := addDirs(w, root, outRoot); err != nil {
		return err
	}
	slog.Info("watching for changes", "root", root)

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New directories need to join the watch set.
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = addDirs(w, ev.Name, outRoot)
					continue
				}
			}
			if !relevant(ev, outRoot) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			slog.Info("change detected, regenerating")
			if err := run(); err != nil {
				// Keep watching; the next save may fix it.
				slog.Error("generation failed", "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		}
	}
}

// addDirs registers a directory tree with the watcher, skipping the output
// root, hidden directories, and vendored trees.
func addDirs(w *fsnotify.Watcher, root, outRoot string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		name := d.Name()
		if p != root {
			if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" {
				return fs.SkipDir
			}
			if filepath.Clean(p) == outRoot {
				return fs.SkipDir
			}
		}
		return w.Add(p)
	})
}

// relevant reports whether an event should trigger regeneration: Go file
// writes outside the output tree.
func relevant(ev fsnotify.Event, outRoot string) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	clean := filepath.Clean(ev.Name)
	if clean == outRoot || strings.HasPrefix(clean, outRoot+string(filepath.Separator)) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".go") || base == fluidgen.DefaultConfigFile
}
