package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/conorfennell/timeline/internal/gitsource"
	"github.com/conorfennell/timeline/internal/knol"
	"github.com/conorfennell/timeline/internal/parser"
	"github.com/conorfennell/timeline/internal/storage"
)

// DefaultDeckGlob matches every deck file the parser understands.
const DefaultDeckGlob = "**/*.{md,yaml,yml}"

// ErrInvalidGlob is returned for deck patterns doublestar cannot parse.
var ErrInvalidGlob = errors.New("sync: invalid deck glob")

// Options controls where git sources are checked out and which files are decks.
type Options struct {
	ReposDir string
	DeckGlob string
}

func (o Options) glob() string {
	if o.DeckGlob == "" {
		return DefaultDeckGlob
	}
	return o.DeckGlob
}

// Report summarises the reconciliation of one source.
type Report struct {
	SourceID int64
	Path     string
	Files    int
	Events   int
	Orphaned int
	Errors   []error
}

// AddSource registers a local directory or git URL as an event source.
// Local paths are stored absolute. Adding a known source returns it as is.
func AddSource(db *storage.DB, location string) (*storage.Source, error) {
	typ := storage.SourceGit
	if !gitsource.IsURL(location) {
		typ = storage.SourceLocal
		abs, err := filepath.Abs(location)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve source path %s: %w", location, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to add source %s: %w", location, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("failed to add source %s: not a directory", location)
		}
		location = abs
	}

	existing, err := db.FindSourceByPath(location)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		slog.Info("Source already exists", "id", existing.ID, "path", location)
		return existing, nil
	}

	id, err := db.InsertSource(typ, location)
	if err != nil {
		return nil, err
	}
	slog.Info("Added source", "id", id, "type", typ, "path", location)
	return &storage.Source{ID: id, Type: typ, Path: location}, nil
}

// RunSync iterates over all sources and reconciles them. A source that
// fails is logged and skipped; only failures to read the source list are
// returned.
func RunSync(ctx context.Context, db *storage.DB, opts Options) ([]Report, error) {
	slog.Info("Starting sync process for all sources...")
	sources, err := db.GetAllSources()
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("No sources configured. Add one with --add-source <path/or/url.git>")
		return nil, nil
	}

	var reports []Report
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := SyncSource(ctx, db, source, opts)
		if err != nil {
			slog.Error("Error syncing source", "id", source.ID, "path", source.Path, "error", err)
			continue
		}
		reports = append(reports, report)
	}
	slog.Info("Sync process complete.", "sources", len(reports))
	return reports, nil
}

// SyncSource brings one source up to date. Git sources are cloned or
// pulled into ReposDir first.
func SyncSource(ctx context.Context, db *storage.DB, source storage.Source, opts Options) (Report, error) {
	slog.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

	dir := source.Path
	if source.Type == storage.SourceGit {
		if err := os.MkdirAll(opts.ReposDir, 0o755); err != nil {
			return Report{}, fmt.Errorf("failed to create repos directory: %w", err)
		}
		localRepoPath, err := gitsource.LocalPath(opts.ReposDir, source.Path)
		if err != nil {
			return Report{}, err
		}
		if err := gitsource.Sync(ctx, source.Path, localRepoPath); err != nil {
			return Report{}, err
		}
		dir = localRepoPath
	}

	return ReconcileDir(db, source.ID, dir, opts.glob())
}

// ReconcileDir parses every deck file under dir matching glob, upserts the
// events under sourceID and deletes the source's events that no longer
// appear. When any file fails to parse, nothing is deleted, so a typo does
// not wipe events out of the pool.
func ReconcileDir(db *storage.DB, sourceID int64, dir, glob string) (Report, error) {
	if !doublestar.ValidatePattern(glob) {
		return Report{}, fmt.Errorf("%w: %q", ErrInvalidGlob, glob)
	}

	report := Report{SourceID: sourceID, Path: dir}
	found := make(map[string]bool)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !matches(glob, dir, path) {
			return nil
		}

		report.Files++
		cards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			slog.Warn("Failed to parse deck file", "path", path, "error", parseErr)
			report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		for _, card := range cards {
			card = knol.AssignID(card)
			if found[string(card.ID)] {
				slog.Warn("Duplicate event id, keeping the last one", "id", card.ID, "path", path)
			}
			found[string(card.ID)] = true
			report.Events++

			if err := db.UpsertEvent(card, sourceID); err != nil {
				report.Errors = append(report.Errors, err)
			}
		}
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("error walking directory %s: %w", dir, walkErr)
	}

	if len(report.Errors) > 0 {
		slog.Warn("Skipping orphan removal after errors", "path", dir, "errors", len(report.Errors))
	} else {
		stored, err := db.GetEventsBySourceID(sourceID)
		if err != nil {
			return report, err
		}
		for _, event := range stored {
			if found[string(event.ID)] {
				continue
			}
			slog.Info("Orphaned event, deleting", "id", event.ID)
			if err := db.DeleteEventByID(event.ID); err != nil {
				slog.Warn("Failed to delete orphaned event", "id", event.ID, "error", err)
				continue
			}
			report.Orphaned++
		}
	}

	if err := db.UpdateSourceLastScanned(sourceID); err != nil {
		slog.Warn("Failed to update last scanned for source", "source_id", sourceID, "error", err)
	}

	slog.Info("reconciliation complete",
		"path", dir,
		"files", report.Files,
		"events", report.Events,
		"orphaned_deleted", report.Orphaned,
		"errors", len(report.Errors),
	)
	return report, nil
}

// matches reports whether path, relative to root, matches glob.
func matches(glob, root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return doublestar.MatchUnvalidated(glob, filepath.ToSlash(rel))
}
