package domain

// PlacedCard is a card that sits on the timeline.
type PlacedCard struct {
	Card
	IsRevealed bool `json:"isRevealed,omitempty"`
}

// Timeline is the ordered sequence of placed cards. Built only through
// correct placements, it stays sorted ascending by DateOccurred.
type Timeline []PlacedCard

// TimelineOf wraps the given cards as revealed timeline entries, in order.
func TimelineOf(cards ...Card) Timeline {
	t := make(Timeline, 0, len(cards))
	for _, c := range cards {
		t = append(t, PlacedCard{Card: c, IsRevealed: true})
	}
	return t
}

// Insert returns a new timeline with card revealed at position.
// The receiver is not modified. position must be within [0, len(t)].
func (t Timeline) Insert(position int, card Card) Timeline {
	out := make(Timeline, 0, len(t)+1)
	out = append(out, t[:position]...)
	out = append(out, PlacedCard{Card: card, IsRevealed: true})
	out = append(out, t[position:]...)
	return out
}
