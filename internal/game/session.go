// Package game deals new game sessions and runs turns between a player and
// a computer opponent.
package game

import (
	"math/rand"
	"time"

	"github.com/conorfennell/timeline/internal/domain"
	"github.com/conorfennell/timeline/internal/platform/clock"
	"github.com/conorfennell/timeline/internal/platform/id"
	"github.com/conorfennell/timeline/internal/scoring"
)

type options struct {
	rng     *rand.Rand
	ids     id.Generator
	clock   clock.Clock
	scoring *scoring.Params
}

// Option configures session creation and matches.
type Option func(*options)

// WithRand sets the random source used for shuffling and feedback wording.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithIDGenerator sets the source of session ids.
func WithIDGenerator(g id.Generator) Option {
	return func(o *options) { o.ids = g }
}

// WithClock sets the clock used for start and finish times.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithScoring sets the scoring constants for a match.
func WithScoring(p *scoring.Params) Option {
	return func(o *options) { o.scoring = p }
}

func newOptions(opts []Option) *options {
	o := &options{
		ids:     id.TimeOrdered{},
		clock:   clock.SystemClock{},
		scoring: scoring.DefaultParams(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// CreateGameSession deals a new game from events. The events are shuffled
// uniformly; the first becomes the only timeline entry and the next
// settings.HandSize() form the player's hand. With fewer events the hand is
// smaller, and with none the session has an empty timeline and hand.
// events is never modified.
func CreateGameSession(events []domain.Card, settings domain.Settings, opts ...Option) *domain.GameSession {
	session, _ := deal(events, settings, newOptions(opts))
	return session
}

// deal builds a session and returns the shuffled events it did not use.
func deal(events []domain.Card, settings domain.Settings, o *options) (*domain.GameSession, []domain.Card) {
	deck := shuffled(events, o.rng)
	drawn := min(len(deck), settings.HandSize()+1)

	session := &domain.GameSession{
		SessionID:  o.ids.New(),
		Timeline:   domain.Timeline{},
		PlayerHand: []domain.Card{},
		Settings:   settings,
		StartTime:  o.clock.Now().UnixMilli(),
		Attempts:   make(map[domain.CardID]int),
		Status:     domain.Playing,
	}
	if drawn > 0 {
		session.Timeline = domain.TimelineOf(deck[0])
		session.PlayerHand = append(session.PlayerHand, deck[1:drawn]...)
	}
	return session, deck[drawn:]
}

// shuffled returns a Fisher-Yates shuffled copy of cards.
func shuffled(cards []domain.Card, rng *rand.Rand) []domain.Card {
	deck := append([]domain.Card(nil), cards...)
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
