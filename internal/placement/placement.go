// Package placement decides where an event belongs on a timeline and whether
// a proposed placement is correct.
//
// Dates are compared as calendar instants. A card whose date cannot be parsed
// compares false against everything, so it is never "before" another card and
// a timeline containing it is not chronological. Rejecting such cards up front
// is the caller's job.
package placement

import (
	"math/rand"
	"time"

	"github.com/conorfennell/timeline/internal/domain"
)

// Result is the outcome of checking one placement.
type Result struct {
	IsCorrect       bool   `json:"isCorrect"`
	CorrectPosition int    `json:"correctPosition"`
	UserPosition    int    `json:"userPosition"`
	DateOccurred    string `json:"dateOccurred"`
	Feedback        string `json:"feedback"`
}

// Validator checks placements and phrases feedback for them.
// Its only state is the random source used to vary feedback wording.
type Validator struct {
	rng *rand.Rand
}

// NewValidator returns a Validator drawing feedback variations from rng.
// A nil rng is replaced by a time-seeded source.
func NewValidator(rng *rand.Rand) *Validator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Validator{rng: rng}
}

// before reports a < b. Malformed dates make it false.
func before(a, b domain.Card) bool {
	ta, okA := a.Time()
	tb, okB := b.Time()
	return okA && okB && ta.Before(tb)
}

// notAfter reports a <= b. Malformed dates make it false.
func notAfter(a, b domain.Card) bool {
	ta, okA := a.Time()
	tb, okB := b.Time()
	return okA && okB && !ta.After(tb)
}

// FindCorrectPosition returns the first index whose event is strictly later
// than card, or len(timeline) when there is none. Cards dated the same as an
// existing entry therefore go after it.
func FindCorrectPosition(card domain.Card, timeline domain.Timeline) int {
	for i, placed := range timeline {
		if before(card, placed.Card) {
			return i
		}
	}
	return len(timeline)
}

// IsTimelineChronological reports whether every entry is dated no later
// than its successor. Empty and single-entry timelines are chronological.
func IsTimelineChronological(timeline domain.Timeline) bool {
	for i := 1; i < len(timeline); i++ {
		if !notAfter(timeline[i-1].Card, timeline[i].Card) {
			return false
		}
	}
	return true
}

// ValidateCardPlacement checks whether userPosition is where card belongs.
// It never fails; out-of-range positions are simply incorrect.
func (v *Validator) ValidateCardPlacement(card domain.Card, timeline domain.Timeline, userPosition int) Result {
	correct := FindCorrectPosition(card, timeline)
	return Result{
		IsCorrect:       userPosition == correct,
		CorrectPosition: correct,
		UserPosition:    userPosition,
		DateOccurred:    card.DateOccurred,
		Feedback:        v.GeneratePlacementFeedback(card, timeline, userPosition, correct),
	}
}
