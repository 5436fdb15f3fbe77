package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/timeline/internal/config"
	"github.com/conorfennell/timeline/internal/platform/logging"
	"github.com/conorfennell/timeline/internal/storage"
	"github.com/conorfennell/timeline/internal/sync"
)

func main() {
	// 1. Define and parse command-line flags
	fs := pflag.NewFlagSet("timeline", pflag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML config file (default "+config.DefaultFile+" if present)")
	addSource := fs.String("add-source", "", "Add a local directory or git URL as an event source")
	runSync := fs.Bool("sync", false, "Sync all event sources")
	watch := fs.Bool("watch", false, "Re-sync local sources whenever their deck files change")
	play := fs.Bool("play", false, "Play a game against the computer")
	stats := fs.Bool("stats", false, "Show what the opponent has learned and recent results")
	fast := fs.Bool("fast", false, "Skip the opponent's thinking pauses")
	config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	// 2. Load configuration and set up logging
	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if _, err := logging.Setup(os.Stderr, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	// 3. Open the database
	db, err := storage.Open(cfg.DB)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Debug("Database opened successfully", "path", cfg.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, db, cfg, actions{
		addSource: *addSource,
		sync:      *runSync,
		watch:     *watch,
		play:      *play,
		stats:     *stats,
		fast:      *fast,
	}); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		db.Close()
		os.Exit(1)
	}
}

type actions struct {
	addSource string
	sync      bool
	watch     bool
	play      bool
	stats     bool
	fast      bool
}

// run performs the requested actions in a fixed order: add, sync, watch,
// play, stats. With no action it prints usage.
func run(ctx context.Context, db *storage.DB, cfg *config.Config, a actions) error {
	opts := sync.Options{ReposDir: cfg.ReposDir, DeckGlob: cfg.DeckGlob}
	did := false

	if a.addSource != "" {
		did = true
		if _, err := sync.AddSource(db, a.addSource); err != nil {
			return err
		}
	}
	if a.sync {
		did = true
		if _, err := sync.RunSync(ctx, db, opts); err != nil {
			return err
		}
	}
	if a.watch {
		did = true
		if err := sync.Watch(ctx, db, sync.WatchOptions{Options: opts}); err != nil {
			return err
		}
	}
	if a.play {
		did = true
		seed := cfg.Game.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		g := &player{
			db:    db,
			cfg:   cfg,
			rng:   rand.New(rand.NewSource(seed)),
			in:    os.Stdin,
			out:   os.Stdout,
			pause: !a.fast,
		}
		if err := g.play(ctx); err != nil {
			return err
		}
	}
	if a.stats {
		did = true
		if err := printStats(os.Stdout, db, cfg); err != nil {
			return err
		}
	}

	if !did {
		fmt.Println("Nothing to do. Use --add-source, --sync, --watch, --play or --stats.")
	}
	return nil
}
