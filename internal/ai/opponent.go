// Package ai implements the computer opponent: which card to play, where to
// put it, and what to remember afterwards.
//
// An Opponent plays one game at a time and is not safe for concurrent use;
// run one per concurrent game. Its Memory outlives individual games on
// purpose, so an opponent reused across games keeps learning.
package ai

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/conorfennell/timeline/internal/domain"
	"github.com/conorfennell/timeline/internal/placement"
	"github.com/conorfennell/timeline/internal/platform/clock"
)

const (
	baseConfidence   = 0.8
	familiarBonus    = 0.1 // an event within familiarYears
	ambiguousPenalty = 0.2 // an event within ambiguousYears
	familiarYears    = 10
	ambiguousYears   = 2
	minConfidence    = 0.2
	maxConfidence    = 1.0

	confidenceWeight = 0.7
	strategicWeight  = 0.3
	hunchPool        = 3

	mistakeSpread     = 0.3
	mistakeConfidence = 0.6
)

// Selection is the card an opponent chose to play.
type Selection struct {
	Card           domain.Card
	Confidence     float64
	StrategicValue float64
	Reasoning      string
}

// Placement is where an opponent decided to put a card.
type Placement struct {
	Position        int
	CorrectPosition int
	Confidence      float64
	IsMistake       bool
	Reasoning       string
}

// HistoryEntry records one placement made during the current game.
type HistoryEntry struct {
	Card       domain.Card
	WasCorrect bool
	Confidence float64
	Timestamp  time.Time
}

// Stats summarises the current game's placements.
type Stats struct {
	Profile           string
	TotalPlacements   int
	CorrectPlacements int
	Accuracy          float64
	AverageConfidence float64
	MemoryBuckets     int
}

// Opponent is a computer player with a difficulty profile and a memory.
type Opponent struct {
	profile Profile
	memory  *Memory
	history []HistoryEntry
	rng     *rand.Rand
	clock   clock.Clock
}

// Option configures an Opponent.
type Option func(*Opponent)

// WithRand sets the random source behind hunches, mistakes and thinking time.
func WithRand(rng *rand.Rand) Option {
	return func(o *Opponent) { o.rng = rng }
}

// WithClock sets the clock used to timestamp history entries.
func WithClock(c clock.Clock) Option {
	return func(o *Opponent) { o.clock = c }
}

// NewOpponent returns an opponent playing with profile and learning into
// memory. A nil memory starts an empty table of default capacity.
func NewOpponent(profile Profile, memory *Memory, opts ...Option) (*Opponent, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if memory == nil {
		m, err := NewMemory(DefaultMemoryCapacity)
		if err != nil {
			return nil, err
		}
		memory = m
	}
	o := &Opponent{
		profile: profile,
		memory:  memory,
		clock:   clock.SystemClock{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o, nil
}

// Profile returns the opponent's difficulty profile.
func (o *Opponent) Profile() Profile {
	return o.profile
}

// Memory returns the opponent's learned table.
func (o *Opponent) Memory() *Memory {
	return o.memory
}

// History returns a copy of the placements made this game.
func (o *Opponent) History() []HistoryEntry {
	return append([]HistoryEntry(nil), o.history...)
}

// AnalyzeCardPlacement estimates how likely the opponent is to place card
// correctly on timeline, in [0.2, 1].
func (o *Opponent) AnalyzeCardPlacement(card domain.Card, timeline domain.Timeline) float64 {
	confidence := baseConfidence

	if year, ok := card.Year(); ok && len(timeline) > 0 {
		familiar, ambiguous := false, false
		for _, placed := range timeline {
			other, ok := placed.Year()
			if !ok {
				continue
			}
			gap := abs(year - other)
			if gap <= familiarYears {
				familiar = true
			}
			if gap <= ambiguousYears {
				ambiguous = true
			}
		}
		if familiar {
			confidence += familiarBonus
		}
		if ambiguous {
			confidence -= ambiguousPenalty
		}
	}

	if entry, ok := o.memory.Lookup(KeyFor(card)); ok {
		confidence = (confidence + entry.Accuracy) / 2
	}

	return clamp(confidence, minConfidence, maxConfidence)
}

// StrategicValue rates how worthwhile it is to play card now, in [0, 1],
// regardless of whether it would be placed correctly. It favours easy cards
// early on, cards that extend the timeline's range, and cards easier than
// the rest of the hand.
func (o *Opponent) StrategicValue(card domain.Card, hand []domain.Card, timeline domain.Timeline) float64 {
	value := 0.5

	if len(timeline) < 3 && card.Difficulty <= 2 {
		value += 0.2
	}
	if extendsRange(card, timeline) {
		value += 0.2
	}
	if len(hand) > 0 {
		total := 0
		for _, c := range hand {
			total += c.Difficulty
		}
		if float64(card.Difficulty) < float64(total)/float64(len(hand)) {
			value += 0.1
		}
	}

	return clamp(value, 0, 1)
}

type candidate struct {
	card       domain.Card
	confidence float64
	strategic  float64
	score      float64
}

// SelectCard picks the card to play from hand. ok is false when hand is
// empty, meaning the opponent has no move.
//
// Cards are ranked by 0.7*confidence + 0.3*strategic value. With
// probability 1-Accuracy the opponent plays a hunch instead and picks
// uniformly among the top three.
func (o *Opponent) SelectCard(hand []domain.Card, timeline domain.Timeline) (sel Selection, ok bool) {
	if len(hand) == 0 {
		return Selection{}, false
	}

	candidates := make([]candidate, len(hand))
	for i, card := range hand {
		conf := o.AnalyzeCardPlacement(card, timeline)
		strat := o.StrategicValue(card, hand, timeline)
		candidates[i] = candidate{
			card:       card,
			confidence: conf,
			strategic:  strat,
			score:      confidenceWeight*conf + strategicWeight*strat,
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	pick := 0
	hunch := false
	if len(candidates) > 1 && o.rng.Float64() < 1-o.profile.Accuracy {
		pick = o.rng.Intn(min(hunchPool, len(candidates)))
		hunch = true
	}
	chosen := candidates[pick]

	reasoning := fmt.Sprintf("Playing %s: %.0f%% confident, strategic value %.0f%%.",
		chosen.card.Title, chosen.confidence*100, chosen.strategic*100)
	if hunch {
		reasoning = fmt.Sprintf("Going with a hunch on %s (%.0f%% confident).",
			chosen.card.Title, chosen.confidence*100)
	}

	return Selection{
		Card:           chosen.card,
		Confidence:     chosen.confidence,
		StrategicValue: chosen.strategic,
		Reasoning:      reasoning,
	}, true
}

// DetermineCardPlacement decides where to put card. With probability
// MistakeChance the correct index is shifted by up to 30% of the timeline
// length (at least one slot), and confidence drops to 60%.
func (o *Opponent) DetermineCardPlacement(card domain.Card, timeline domain.Timeline) Placement {
	correct := placement.FindCorrectPosition(card, timeline)
	confidence := o.AnalyzeCardPlacement(card, timeline)

	position := correct
	if len(timeline) > 0 && o.rng.Float64() < o.profile.MistakeChance {
		position = o.mistakenPosition(correct, len(timeline))
	}
	isMistake := position != correct

	reasoning := fmt.Sprintf("%s belongs at position %d.", card.Title, position)
	if isMistake {
		confidence *= mistakeConfidence
		reasoning = fmt.Sprintf("%s feels like it belongs around position %d.", card.Title, position)
	}

	return Placement{
		Position:        position,
		CorrectPosition: correct,
		Confidence:      confidence,
		IsMistake:       isMistake,
		Reasoning:       reasoning,
	}
}

// mistakenPosition returns an index in [0, n] other than correct, at most
// max(1, ceil(0.3n)) away from it. n must be at least 1.
func (o *Opponent) mistakenPosition(correct, n int) int {
	spread := max(1, int(math.Ceil(float64(n)*mistakeSpread)))
	magnitude := 1 + o.rng.Intn(spread)
	sign := 1
	if o.rng.Intn(2) == 0 {
		sign = -1
	}

	position := clampInt(correct+sign*magnitude, 0, n)
	if position == correct {
		position = clampInt(correct-sign*magnitude, 0, n)
	}
	return position
}

// LearnFromPlacement records the outcome of a placement in memory and in
// this game's history.
func (o *Opponent) LearnFromPlacement(card domain.Card, wasCorrect bool, confidence float64) {
	o.memory.Observe(KeyFor(card), wasCorrect, o.profile.LearningRate)
	o.history = append(o.history, HistoryEntry{
		Card:       card,
		WasCorrect: wasCorrect,
		Confidence: confidence,
		Timestamp:  o.clock.Now(),
	})
}

// GetPerformanceStats summarises this game's placements. It is meant for
// tuning and telemetry; play never depends on it.
func (o *Opponent) GetPerformanceStats() Stats {
	stats := Stats{
		Profile:         o.profile.Name,
		TotalPlacements: len(o.history),
		MemoryBuckets:   o.memory.Len(),
	}
	if len(o.history) == 0 {
		return stats
	}

	var confidence float64
	for _, h := range o.history {
		if h.WasCorrect {
			stats.CorrectPlacements++
		}
		confidence += h.Confidence
	}
	n := float64(len(o.history))
	stats.Accuracy = float64(stats.CorrectPlacements) / n
	stats.AverageConfidence = confidence / n
	return stats
}

// ResetForNewGame clears the game history. Memory is kept.
func (o *Opponent) ResetForNewGame() {
	o.history = nil
}

// ThinkingTime returns a delay drawn uniformly from the profile's range.
// It only paces the game for the player.
func (o *Opponent) ThinkingTime() time.Duration {
	r := o.profile.ThinkingTime
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(o.rng.Int63n(int64(r.Max-r.Min)+1))
}

func extendsRange(card domain.Card, timeline domain.Timeline) bool {
	if len(timeline) == 0 {
		return false
	}
	t, ok := card.Time()
	if !ok {
		return false
	}
	if first, ok := timeline[0].Time(); ok && t.Before(first) {
		return true
	}
	if last, ok := timeline[len(timeline)-1].Time(); ok && t.After(last) {
		return true
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
