package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/pagegridgo/internal/discovery"
	"github.com/specialistvlad/pagegridgo/internal/parser"
)

// Watch re-runs discovery whenever a definition source under the root
// changes, and regenerates every page config when an output directory is
// configured. Bursts of events are coalesced for the debounce window. onChange,
// when set, receives each new result. Watch returns when ctx is cancelled.
func (a *App) Watch(ctx context.Context, onChange func(*discovery.Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, a.config.RootPath); err != nil {
		return err
	}
	logger := a.logger.With("component", "watch", "root", a.config.RootPath)
	logger.Info("👀 Watching definitions", "debounce", a.config.Debounce)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !a.relevant(watcher, event) {
				continue
			}
			logger.Debug("Source changed", "name", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(a.config.Debounce)
			} else {
				timer.Reset(a.config.Debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "error", err)

		case <-fire:
			fire = nil
			res, err := a.refresh(ctx)
			if err != nil {
				logger.Error("Regeneration failed", "error", err)
			}
			if onChange != nil {
				onChange(res, err)
			}
		}
	}
}

// relevant reports whether event should trigger regeneration. New
// directories are added to the watch as a side effect.
func (a *App) relevant(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if a.inOutputDir(event.Name) {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(watcher, event.Name); err != nil {
				a.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return true
		}
	}
	// A removed or renamed directory has no extension and may have held
	// definitions.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return filepath.Ext(event.Name) == "" || parser.Supported(event.Name)
	}
	return parser.Supported(event.Name)
}

// inOutputDir keeps written page configs from retriggering regeneration.
func (a *App) inOutputDir(path string) bool {
	if a.config.OutputDir == "" {
		return false
	}
	out, err := filepath.Abs(a.config.OutputDir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(out, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// refresh rediscovers the tree and, with an output directory, rewrites
// every page config.
func (a *App) refresh(ctx context.Context) (*discovery.Result, error) {
	res, err := a.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if a.config.OutputDir != "" {
		if _, err := a.GenerateAll(ctx); err != nil {
			return res, err
		}
	}
	return res, nil
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
