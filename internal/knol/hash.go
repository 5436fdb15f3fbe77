package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/timeline/internal/domain"
)

// Normalize joins the identifying parts of an event after cleaning each one.
// Description and difficulty are left out so that rewording the notes or
// re-rating a card keeps its identity (and the AI's memory of it).
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		p = strings.Join(strings.Fields(p), " ")
		return p
	}

	return strings.Join([]string{
		normalizePart(card.Title),
		normalizePart(card.DateOccurred),
		normalizePart(card.Category),
	}, "\n")
}

// Hash returns the SHA-256 hex digest of the normalized card.
func Hash(card domain.Card) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return fmt.Sprintf("%x", sum)
}

// AssignID gives card a short content-derived id when it has none.
func AssignID(card domain.Card) domain.Card {
	if card.ID != "" {
		return card
	}
	card.ID = domain.CardID(Hash(card)[:16])
	return card
}
