package storage

import (
	"database/sql"
	"fmt"

	"github.com/conorfennell/timeline/internal/ai"
)

// SaveMemory replaces everything stored for the named opponent with records,
// keeping their order.
func (db *DB) SaveMemory(opponent string, records []ai.Record) error {
	return db.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM ai_memory WHERE opponent = ?`, opponent); err != nil {
			return fmt.Errorf("failed to clear memory for %s: %w", opponent, err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO ai_memory (opponent, category, decade, difficulty, attempts, successes, accuracy, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare memory insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range records {
			if _, err := stmt.Exec(opponent, r.Key.Category, r.Key.Decade, r.Key.Difficulty,
				r.Entry.Attempts, r.Entry.Successes, r.Entry.Accuracy, i); err != nil {
				return fmt.Errorf("failed to save memory bucket %s for %s: %w", r.Key, opponent, err)
			}
		}
		return nil
	})
}

// LoadMemory returns the named opponent's stored buckets in saved order.
// An opponent that has never been saved has no records.
func (db *DB) LoadMemory(opponent string) ([]ai.Record, error) {
	rows, err := db.conn.Query(`
		SELECT category, decade, difficulty, attempts, successes, accuracy
		FROM ai_memory WHERE opponent = ?
		ORDER BY position
	`, opponent)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory for %s: %w", opponent, err)
	}
	defer rows.Close()

	var records []ai.Record
	for rows.Next() {
		var r ai.Record
		if err := rows.Scan(&r.Key.Category, &r.Key.Decade, &r.Key.Difficulty,
			&r.Entry.Attempts, &r.Entry.Successes, &r.Entry.Accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan memory row for %s: %w", opponent, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
