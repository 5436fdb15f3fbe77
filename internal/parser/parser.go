package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/conorfennell/timeline/internal/domain"
)

const (
	titlePrefix      = "T:"
	datePrefix       = "D:"
	categoryPrefix   = "C:"
	difficultyPrefix = "L:"
	notesPrefix      = "N:"
	idPrefix         = "I:"
)

const (
	// DefaultCategory is used for events that do not name one.
	DefaultCategory = "general"
	// DefaultDifficulty is used for events without an L: line.
	DefaultDifficulty = 3
)

// ErrUnsupportedFormat is returned by ParseFile for unknown file extensions.
var ErrUnsupportedFormat = errors.New("parser: unsupported deck format")

type state int

const (
	seeking state = iota
	readingEvent
	readingNotes
)

// ParseFile reads a deck file and extracts all events. Markdown (.md) and
// YAML (.yaml, .yml) decks are supported.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return Parse(file)
	case ".yaml", ".yml":
		return ParseYAML(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Parse reads a markdown deck and extracts all events.
//
// Each event is a run of prefixed lines: T: title, D: date, C: category,
// L: difficulty, I: id and N: notes. Notes continue over the following
// unprefixed lines. Events are separated by --- or by the next T: line.
// Text outside an event is ignored. An event that fails validation makes
// the whole deck fail, with the event's line number in the error.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	var cards []domain.Card
	var current domain.Card
	var notes []string
	var difficulty string
	currentState := seeking
	lineNo, startLine := 0, 0

	finishCard := func() error {
		defer func() {
			current = domain.Card{}
			notes = nil
			difficulty = ""
			currentState = seeking
		}()
		if currentState == seeking {
			return nil
		}

		current.Description = strings.TrimSpace(strings.Join(notes, "\n"))
		if current.Category == "" {
			current.Category = DefaultCategory
		}
		current.Difficulty = DefaultDifficulty
		if difficulty != "" {
			d, err := strconv.Atoi(difficulty)
			if err != nil {
				return fmt.Errorf("line %d: invalid difficulty %q", startLine, difficulty)
			}
			current.Difficulty = d
		}
		if err := current.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", startLine, err)
		}
		cards = append(cards, current)
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		if strings.TrimSpace(line) == "---" {
			if err := finishCard(); err != nil {
				return nil, err
			}
			continue
		}

		prefix, value, ok := splitPrefix(line)
		if !ok {
			if currentState == readingNotes {
				notes = append(notes, line)
			}
			continue
		}

		if prefix == titlePrefix && current.Title != "" {
			if err := finishCard(); err != nil { // A new title always starts a new event
				return nil, err
			}
		}
		if currentState == seeking {
			startLine = lineNo
		}
		currentState = readingEvent

		switch prefix {
		case titlePrefix:
			current.Title = value
		case datePrefix:
			current.DateOccurred = value
		case categoryPrefix:
			current.Category = value
		case difficultyPrefix:
			difficulty = value
		case idPrefix:
			current.ID = domain.CardID(value)
		case notesPrefix:
			currentState = readingNotes
			notes = append(notes, value)
		}
	}

	if err := finishCard(); err != nil { // Finish the very last event in the file
		return nil, err
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// splitPrefix recognises a field line and returns its prefix and trimmed value.
func splitPrefix(line string) (prefix, value string, ok bool) {
	for _, p := range []string{titlePrefix, datePrefix, categoryPrefix, difficultyPrefix, notesPrefix, idPrefix} {
		if strings.HasPrefix(line, p) {
			return p, strings.TrimSpace(line[len(p):]), true
		}
	}
	return "", "", false
}
