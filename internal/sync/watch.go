package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conorfennell/timeline/internal/storage"
)

// DefaultDebounce is how long Watch waits for a burst of file events to
// settle before reconciling.
const DefaultDebounce = 500 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Options
	Debounce time.Duration
	// OnSync, if set, receives the report of every reconciliation.
	OnSync func(Report)
}

// Watch reconciles local sources whenever their deck files change, until
// ctx is cancelled. Git sources are not watched; run a sync to pull them.
func Watch(ctx context.Context, db *storage.DB, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	all, err := db.GetAllSources()
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}
	var sources []storage.Source
	for _, s := range all {
		if s.Type == storage.SourceLocal {
			sources = append(sources, s)
		}
	}
	if len(sources) == 0 {
		slog.Info("No local sources to watch")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, s := range sources {
		if err := addTree(watcher, s.Path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", s.Path, err)
		}
		slog.Info("Watching source", "id", s.ID, "path", s.Path)
	}

	pending := make(map[int64]storage.Source)
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			source, ok := owner(sources, event.Name)
			if !ok {
				continue
			}
			slog.Debug("file event", "path", event.Name, "op", event.Op.String())

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
					pending[source.ID] = source
				}
			}
			if relevant(event, opts.glob(), source.Path) {
				pending[source.ID] = source
			}
			if len(pending) > 0 {
				flush = time.After(opts.Debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)

		case <-flush:
			flush = nil
			for id, source := range pending {
				report, err := ReconcileDir(db, id, source.Path, opts.glob())
				if err != nil {
					slog.Error("Error reconciling source", "id", id, "path", source.Path, "error", err)
					continue
				}
				if opts.OnSync != nil {
					opts.OnSync(report)
				}
			}
			clear(pending)
		}
	}
}

// addTree watches dir and every directory below it except .git.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// owner returns the source whose directory contains path.
func owner(sources []storage.Source, path string) (storage.Source, bool) {
	for _, s := range sources {
		if path == s.Path || strings.HasPrefix(path, s.Path+string(filepath.Separator)) {
			return s, true
		}
	}
	return storage.Source{}, false
}

// relevant reports whether event can change the source's events. Removals
// and renames always count because the removed path may have been a directory.
func relevant(event fsnotify.Event, glob, root string) bool {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		return matches(glob, root, event.Name)
	}
	return false
}
