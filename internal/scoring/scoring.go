package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned by Validate for unusable score constants.
var ErrInvalidParams = errors.New("scoring: invalid parameters")

// Params holds the constants of the scoring formula.
type Params struct {
	BaseScore      float64 // points per difficulty level for a correct placement
	TimeBonusMax   float64 // bonus for an instant placement
	TimeBonusRate  float64 // bonus points lost per second
	AttemptPenalty float64 // points lost per failed attempt before this one
	MinScore       float64 // floor for any correct placement
}

// DefaultParams returns the standard rule set.
func DefaultParams() *Params {
	return &Params{
		BaseScore:      100,
		TimeBonusMax:   50,
		TimeBonusRate:  10,
		AttemptPenalty: 25,
		MinScore:       10,
	}
}

// Validate rejects negative or non-finite constants.
func (p *Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"base score", p.BaseScore},
		{"time bonus max", p.TimeBonusMax},
		{"time bonus rate", p.TimeBonusRate},
		{"attempt penalty", p.AttemptPenalty},
		{"min score", p.MinScore},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidParams, f.name, f.value)
		}
	}
	return nil
}

// CalculateScore awards points for a placement.
//
//	score = round(max(MinScore, BaseScore*difficulty + max(0, TimeBonusMax - t*TimeBonusRate) - (attempts-1)*AttemptPenalty))
//
// An incorrect placement scores exactly 0. timeToPlace is in seconds;
// negative times count as 0 and attempts below 1 count as 1.
func (p *Params) CalculateScore(isCorrect bool, timeToPlace float64, attempts, difficulty int) int {
	if !isCorrect {
		return 0
	}
	if timeToPlace < 0 || math.IsNaN(timeToPlace) {
		timeToPlace = 0
	}
	if attempts < 1 {
		attempts = 1
	}

	base := p.BaseScore * float64(difficulty)
	timeBonus := p.TimeBonusMax
	if p.TimeBonusRate > 0 {
		timeBonus = math.Max(0, p.TimeBonusMax-timeToPlace*p.TimeBonusRate)
	}
	penalty := float64(attempts-1) * p.AttemptPenalty

	raw := base + timeBonus - penalty
	return int(math.Round(math.Max(p.MinScore, raw)))
}

// CalculateScore scores a placement with DefaultParams.
func CalculateScore(isCorrect bool, timeToPlace float64, attempts, difficulty int) int {
	return DefaultParams().CalculateScore(isCorrect, timeToPlace, attempts, difficulty)
}
