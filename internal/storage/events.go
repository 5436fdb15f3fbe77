package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/conorfennell/timeline/internal/domain"
)

const eventColumns = `id, title, description, category, difficulty, date_occurred`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (domain.Card, error) {
	var c domain.Card
	err := s.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Difficulty, &c.DateOccurred)
	return c, err
}

// UpsertEvent stores an event, replacing any stored event with the same id.
func (db *DB) UpsertEvent(card domain.Card, sourceID int64) error {
	_, err := db.conn.Exec(`
		INSERT INTO events (id, title, description, category, difficulty, date_occurred, source_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			difficulty = excluded.difficulty,
			date_occurred = excluded.date_occurred,
			source_id = excluded.source_id
	`,
		string(card.ID),
		card.Title,
		card.Description,
		card.Category,
		card.Difficulty,
		card.DateOccurred,
		sourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", card.ID, err)
	}
	return nil
}

// FindEventByID retrieves an event from the database by its id.
func (db *DB) FindEventByID(id domain.CardID) (*domain.Card, error) {
	row := db.conn.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, string(id))
	c, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Event not found
		}
		return nil, fmt.Errorf("failed to find event %s: %w", id, err)
	}
	return &c, nil
}

// GetEventsBySourceID retrieves all events that came from a source.
func (db *DB) GetEventsBySourceID(sourceID int64) ([]domain.Card, error) {
	rows, err := db.conn.Query(`SELECT `+eventColumns+` FROM events WHERE source_id = ? ORDER BY id`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for source ID %d: %w", sourceID, err)
	}
	return collectEvents(rows)
}

// GetEventPool returns every stored event, or only those in the given
// categories when any are named.
func (db *DB) GetEventPool(categories []string) ([]domain.Card, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := make([]any, 0, len(categories))
	if len(categories) > 0 {
		query += ` WHERE category IN (?` + strings.Repeat(`, ?`, len(categories)-1) + `)`
		for _, c := range categories {
			args = append(args, c)
		}
	}
	query += ` ORDER BY id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get event pool: %w", err)
	}
	return collectEvents(rows)
}

// DeleteEventByID removes an event from the database by its id.
func (db *DB) DeleteEventByID(id domain.CardID) error {
	_, err := db.conn.Exec(`DELETE FROM events WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}

func collectEvents(rows *sql.Rows) ([]domain.Card, error) {
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
