package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/timeline/internal/domain"
)

// SaveSession stores a session in its JSON form, replacing an earlier save.
func (db *DB) SaveSession(s *domain.GameSession) error {
	data, err := domain.MarshalSession(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.SessionID, err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO sessions (id, status, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, s.SessionID, s.Status.String(), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.SessionID, err)
	}
	return nil
}

// LoadSession retrieves a session by id.
func (db *DB) LoadSession(id string) (*domain.GameSession, error) {
	var data string
	err := db.conn.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Session not found
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return domain.UnmarshalSession([]byte(data))
}

// CountSessions returns the number of stored sessions with the given status.
func (db *DB) CountSessions(status domain.Status) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM sessions WHERE status = ?`, status.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s sessions: %w", status, err)
	}
	return n, nil
}
