package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/conorfennell/timeline/internal/ai"
	"github.com/conorfennell/timeline/internal/config"
	"github.com/conorfennell/timeline/internal/storage"
)

const (
	statsBuckets = 10
	statsResults = 10
)

func printStats(w io.Writer, db *storage.DB, cfg *config.Config) error {
	records, err := db.LoadMemory(cfg.AI.Name)
	if err != nil {
		return err
	}
	results, err := db.RecentResults(cfg.AI.Name, statsResults)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Opponent %q remembers %d buckets.\n", cfg.AI.Name, len(records))
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Entry.Attempts > records[j].Entry.Attempts
	})
	for _, r := range records[:min(statsBuckets, len(records))] {
		fmt.Fprintf(w, "  %-30s %3d/%-3d accuracy %.2f\n", bucketLabel(r.Key), r.Entry.Successes, r.Entry.Attempts, r.Entry.Accuracy)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No finished games yet.")
		return nil
	}
	fmt.Fprintln(w, "Recent games:")
	for _, r := range results {
		fmt.Fprintf(w, "  %s  %-9s you %4d  opponent %4d  (%s)\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Score, r.AIScore, r.Difficulty)
	}
	return nil
}

func bucketLabel(k ai.Key) string {
	if k.Decade == ai.UnknownDecade {
		return fmt.Sprintf("%s, undated, level %d", k.Category, k.Difficulty)
	}
	return fmt.Sprintf("%s, %ds, level %d", k.Category, k.Decade, k.Difficulty)
}
