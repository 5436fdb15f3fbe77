package game

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/conorfennell/timeline/internal/ai"
	"github.com/conorfennell/timeline/internal/domain"
	"github.com/conorfennell/timeline/internal/placement"
	"github.com/conorfennell/timeline/internal/platform/clock"
	"github.com/conorfennell/timeline/internal/scoring"
)

// TurnResult is the outcome of one player placement.
type TurnResult struct {
	placement.Result
	Points   int
	Attempts int // attempts on this card, including this one
	Status   domain.Status
}

// AITurnResult is the outcome of one opponent turn.
type AITurnResult struct {
	Selection    ai.Selection
	Placement    ai.Placement
	Result       placement.Result
	Points       int
	ThinkingTime time.Duration
	Status       domain.Status
}

// Match runs a game between a player and an opponent. The player's state
// lives in the session; the opponent's hand and score live on the match.
// A Match is not safe for concurrent use.
type Match struct {
	session    *domain.GameSession
	opponent   *ai.Opponent
	validator  *placement.Validator
	scoring    *scoring.Params
	clock      clock.Clock
	aiHand     []domain.Card
	aiAttempts map[domain.CardID]int
	aiScore    int
}

// NewMatch deals a session from pool and an opponent hand of the same size
// from the remaining events. The opponent's game history is reset; its
// memory is kept.
func NewMatch(pool []domain.Card, settings domain.Settings, opponent *ai.Opponent, opts ...Option) (*Match, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	if err := o.scoring.Validate(); err != nil {
		return nil, err
	}

	session, rest := deal(pool, settings, o)
	if len(session.Timeline) == 0 {
		return nil, ErrEmptyPool
	}
	aiHand := append([]domain.Card{}, rest[:min(len(rest), settings.HandSize())]...)

	opponent.ResetForNewGame()
	slog.Debug("Dealt match", "session", session.SessionID, "pool", len(pool),
		"playerHand", len(session.PlayerHand), "aiHand", len(aiHand), "opponent", opponent.Profile().Name)

	return &Match{
		session:    session,
		opponent:   opponent,
		validator:  placement.NewValidator(o.rng),
		scoring:    o.scoring,
		clock:      o.clock,
		aiHand:     aiHand,
		aiAttempts: make(map[domain.CardID]int),
	}, nil
}

// Session returns the live session. Callers must not modify it.
func (m *Match) Session() *domain.GameSession {
	return m.session
}

// Opponent returns the match's opponent.
func (m *Match) Opponent() *ai.Opponent {
	return m.opponent
}

// AIHand returns a copy of the opponent's remaining cards.
func (m *Match) AIHand() []domain.Card {
	return slices.Clone(m.aiHand)
}

// AIScore returns the opponent's points so far.
func (m *Match) AIScore() int {
	return m.aiScore
}

// PlaceCard places the player's card at position. elapsed is the time the
// player took to decide. A correct card moves from the hand onto the
// timeline and scores; a wrong one stays in hand and its attempt count rises.
func (m *Match) PlaceCard(cardID domain.CardID, position int, elapsed time.Duration) (TurnResult, error) {
	if m.session.Status.IsOver() {
		return TurnResult{}, ErrGameOver
	}
	idx := m.session.HandIndex(cardID)
	if idx < 0 {
		return TurnResult{}, fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}
	if position < 0 || position > len(m.session.Timeline) {
		return TurnResult{}, fmt.Errorf("%w: %d not in [0, %d]", ErrPositionOutOfRange, position, len(m.session.Timeline))
	}

	card := m.session.PlayerHand[idx]
	res := m.validator.ValidateCardPlacement(card, m.session.Timeline, position)
	attempts := m.session.Attempts[cardID] + 1
	turn := TurnResult{Result: res, Attempts: attempts}

	if res.IsCorrect {
		turn.Points = m.scoring.CalculateScore(true, elapsed.Seconds(), attempts, card.Difficulty)
		m.session.Score += turn.Points
		m.session.Timeline = m.session.Timeline.Insert(position, card)
		m.session.PlayerHand = slices.Delete(m.session.PlayerHand, idx, idx+1)
		if len(m.session.PlayerHand) == 0 {
			m.session.Status = domain.Won
		}
	} else {
		m.session.Attempts[cardID] = attempts
	}

	turn.Status = m.session.Status
	return turn, nil
}

// PlayAITurn lets the opponent select and place a card, then learn from the
// outcome. Like the player, the opponent only lands correct placements; a
// miss leaves the card in its hand.
func (m *Match) PlayAITurn() (AITurnResult, error) {
	if m.session.Status.IsOver() {
		return AITurnResult{}, ErrGameOver
	}
	sel, ok := m.opponent.SelectCard(m.aiHand, m.session.Timeline)
	if !ok {
		return AITurnResult{}, ErrNoMove
	}

	card := sel.Card
	decision := m.opponent.DetermineCardPlacement(card, m.session.Timeline)
	res := m.validator.ValidateCardPlacement(card, m.session.Timeline, decision.Position)
	m.opponent.LearnFromPlacement(card, res.IsCorrect, decision.Confidence)

	thinking := m.opponent.ThinkingTime()
	attempts := m.aiAttempts[card.ID] + 1
	turn := AITurnResult{
		Selection:    sel,
		Placement:    decision,
		Result:       res,
		ThinkingTime: thinking,
	}

	if res.IsCorrect {
		turn.Points = m.scoring.CalculateScore(true, thinking.Seconds(), attempts, card.Difficulty)
		m.aiScore += turn.Points
		m.session.Timeline = m.session.Timeline.Insert(decision.Position, card)
		if i := slices.IndexFunc(m.aiHand, func(c domain.Card) bool { return c.ID == card.ID }); i >= 0 {
			m.aiHand = slices.Delete(m.aiHand, i, i+1)
		}
		if len(m.aiHand) == 0 {
			m.session.Status = domain.Lost
		}
	} else {
		m.aiAttempts[card.ID] = attempts
	}

	slog.Debug("Opponent turn", "session", m.session.SessionID, "card", card.ID,
		"position", decision.Position, "correct", res.IsCorrect, "points", turn.Points)

	turn.Status = m.session.Status
	return turn, nil
}

// UseHint returns a hint for a card in the player's hand and counts it
// against the session.
func (m *Match) UseHint(cardID domain.CardID) (string, error) {
	if m.session.Status.IsOver() {
		return "", ErrGameOver
	}
	idx := m.session.HandIndex(cardID)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}
	m.session.HintsUsed++
	return placement.GenerateHint(m.session.PlayerHand[idx], m.session.Timeline), nil
}

// Abandon ends a game in progress.
func (m *Match) Abandon() error {
	if m.session.Status.IsOver() {
		return ErrGameOver
	}
	m.session.Status = domain.Abandoned
	return nil
}

// Result summarises the match for the results table.
func (m *Match) Result() domain.GameResult {
	return domain.GameResult{
		SessionID:  m.session.SessionID,
		Status:     m.session.Status,
		Score:      m.session.Score,
		AIScore:    m.aiScore,
		Opponent:   m.opponent.Profile().Name,
		Difficulty: m.session.Settings.Difficulty,
		FinishedAt: m.clock.Now(),
	}
}
