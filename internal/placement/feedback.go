package placement

import (
	"fmt"

	"github.com/conorfennell/timeline/internal/domain"
)

var correctTemplates = []string{
	"Correct! %s happened in %s.",
	"Well done, %s (%s) is in the right place.",
	"Spot on! %s belongs right there, in %s.",
	"Nice work. %s fits the timeline at %s.",
}

// GeneratePlacementFeedback phrases the outcome of a placement for the player.
// The wording of a correct placement is picked at random; nothing else
// depends on the choice.
func (v *Validator) GeneratePlacementFeedback(card domain.Card, timeline domain.Timeline, userPosition, correctPosition int) string {
	when := dateLabel(card)

	if len(timeline) == 0 {
		return fmt.Sprintf("%s was placed on the empty timeline.", card.Title)
	}

	if userPosition == correctPosition {
		tmpl := correctTemplates[v.rng.Intn(len(correctTemplates))]
		return fmt.Sprintf(tmpl, card.Title, when)
	}

	direction := "later"
	if userPosition > correctPosition {
		direction = "earlier"
	}
	return fmt.Sprintf("Not quite. %s happened in %s; it should be placed %s on the timeline.", card.Title, when, direction)
}

// GenerateHint names the neighbours a card falls between without giving
// away its position index.
func GenerateHint(card domain.Card, timeline domain.Timeline) string {
	if len(timeline) == 0 {
		if decade, ok := card.Decade(); ok {
			return fmt.Sprintf("This event took place in the %ds.", decade)
		}
		return "No hint is available for this event."
	}

	pos := FindCorrectPosition(card, timeline)
	switch pos {
	case 0:
		first := timeline[0].Card
		return fmt.Sprintf("This event happened before %s (%s).", first.Title, dateLabel(first))
	case len(timeline):
		last := timeline[len(timeline)-1].Card
		return fmt.Sprintf("This event happened after %s (%s).", last.Title, dateLabel(last))
	default:
		prev, next := timeline[pos-1].Card, timeline[pos].Card
		return fmt.Sprintf("This event happened between %s (%s) and %s (%s).",
			prev.Title, dateLabel(prev), next.Title, dateLabel(next))
	}
}

func dateLabel(card domain.Card) string {
	if year, ok := card.Year(); ok {
		return fmt.Sprintf("%d", year)
	}
	return card.DateOccurred
}
