package storage

import (
	"fmt"

	"github.com/conorfennell/timeline/internal/domain"
)

// RecordResult stores the outcome of a finished game. Recording the same
// session twice keeps the latest outcome.
func (db *DB) RecordResult(r domain.GameResult) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO game_results (session_id, status, score, ai_score, opponent, difficulty, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.SessionID, r.Status.String(), r.Score, r.AIScore, r.Opponent, r.Difficulty, r.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record result for session %s: %w", r.SessionID, err)
	}
	return nil
}

// RecentResults returns up to limit results against the named opponent,
// newest first.
func (db *DB) RecentResults(opponent string, limit int) ([]domain.GameResult, error) {
	rows, err := db.conn.Query(`
		SELECT session_id, status, score, ai_score, opponent, difficulty, finished_at
		FROM game_results WHERE opponent = ?
		ORDER BY finished_at DESC, session_id DESC
		LIMIT ?
	`, opponent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for %s: %w", opponent, err)
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var r domain.GameResult
		var status string
		if err := rows.Scan(&r.SessionID, &status, &r.Score, &r.AIScore, &r.Opponent, &r.Difficulty, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		if err := r.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
