package ai

import (
	"fmt"
	"time"
)

// ThinkingRange bounds the cosmetic delay before an AI move.
type ThinkingRange struct {
	Min time.Duration
	Max time.Duration
}

// Profile tunes how well an opponent plays. Higher Accuracy and lower
// MistakeChance make a stronger player; LearningRate controls how quickly
// remembered accuracy follows observed outcomes.
type Profile struct {
	Name          string
	Accuracy      float64 // (0, 1]; 1-Accuracy is the chance of a hunch pick
	ThinkingTime  ThinkingRange
	MistakeChance float64 // [0, 1]
	LearningRate  float64 // [0, 1]
}

var profiles = map[string]Profile{
	"easy": {
		Name:          "easy",
		Accuracy:      0.60,
		ThinkingTime:  ThinkingRange{Min: 2000 * time.Millisecond, Max: 4000 * time.Millisecond},
		MistakeChance: 0.30,
		LearningRate:  0.10,
	},
	"medium": {
		Name:          "medium",
		Accuracy:      0.75,
		ThinkingTime:  ThinkingRange{Min: 1500 * time.Millisecond, Max: 3000 * time.Millisecond},
		MistakeChance: 0.20,
		LearningRate:  0.15,
	},
	"hard": {
		Name:          "hard",
		Accuracy:      0.85,
		ThinkingTime:  ThinkingRange{Min: 1000 * time.Millisecond, Max: 2500 * time.Millisecond},
		MistakeChance: 0.10,
		LearningRate:  0.20,
	},
	"expert": {
		Name:          "expert",
		Accuracy:      0.95,
		ThinkingTime:  ThinkingRange{Min: 800 * time.Millisecond, Max: 2000 * time.Millisecond},
		MistakeChance: 0.05,
		LearningRate:  0.25,
	},
}

// ProfileNames lists the built-in profiles from weakest to strongest.
func ProfileNames() []string {
	return []string{"easy", "medium", "hard", "expert"}
}

// LookupProfile returns the built-in profile with the given name.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Validate checks that the profile's probabilities are in range.
func (p Profile) Validate() error {
	switch {
	case p.Accuracy <= 0 || p.Accuracy > 1:
		return fmt.Errorf("%w: accuracy %v outside (0, 1]", ErrInvalidProfile, p.Accuracy)
	case p.MistakeChance < 0 || p.MistakeChance > 1:
		return fmt.Errorf("%w: mistake chance %v outside [0, 1]", ErrInvalidProfile, p.MistakeChance)
	case p.LearningRate < 0 || p.LearningRate > 1:
		return fmt.Errorf("%w: learning rate %v outside [0, 1]", ErrInvalidProfile, p.LearningRate)
	case p.ThinkingTime.Min < 0 || p.ThinkingTime.Max < p.ThinkingTime.Min:
		return fmt.Errorf("%w: thinking time %v..%v", ErrInvalidProfile, p.ThinkingTime.Min, p.ThinkingTime.Max)
	}
	return nil
}
