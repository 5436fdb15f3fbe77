package parser

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/conorfennell/timeline/internal/domain"
)

// yamlEvent mirrors domain.Card for YAML decks. Ids may be written as
// numbers or strings; both decode as text.
type yamlEvent struct {
	ID           domain.CardID `yaml:"id"`
	Title        string        `yaml:"title"`
	Description  string        `yaml:"description"`
	Category     string        `yaml:"category"`
	Difficulty   int           `yaml:"difficulty"`
	DateOccurred string        `yaml:"dateOccurred"`
}

type yamlDeck struct {
	Events []yamlEvent `yaml:"events"`
}

// ParseYAML reads a YAML deck: either a list of events or a mapping with an
// events list. Missing categories and difficulties get the same defaults as
// markdown decks.
func ParseYAML(r io.Reader) ([]domain.Card, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode yaml deck: %w", err)
	}

	var events []yamlEvent
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&events); err != nil {
			return nil, fmt.Errorf("failed to decode yaml deck: %w", err)
		}
	case yaml.MappingNode:
		var deck yamlDeck
		if err := doc.Decode(&deck); err != nil {
			return nil, fmt.Errorf("failed to decode yaml deck: %w", err)
		}
		events = deck.Events
	default:
		return nil, fmt.Errorf("failed to decode yaml deck: expected a list or an events mapping at line %d", doc.Line)
	}

	cards := make([]domain.Card, 0, len(events))
	for i, e := range events {
		card := domain.Card{
			ID:           e.ID,
			Title:        e.Title,
			Description:  e.Description,
			Category:     e.Category,
			Difficulty:   e.Difficulty,
			DateOccurred: e.DateOccurred,
		}
		if card.Category == "" {
			card.Category = DefaultCategory
		}
		if card.Difficulty == 0 {
			card.Difficulty = DefaultDifficulty
		}
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}
