package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateScoreExamples(t *testing.T) {
	testCases := []struct {
		name       string
		isCorrect  bool
		time       float64
		attempts   int
		difficulty int
		expected   int
	}{
		// 100*1 + 50 - 0
		{"instant first try", true, 0, 1, 1, 150},
		// 100*1 + max(0, 50 - 5*10) - 25
		{"five seconds second try", true, 5, 2, 1, 75},
		// 100*1 + (50 - 1*10) - 0
		{"one second", true, 1, 1, 1, 140},
		// 100*3 + (50 - 2.5*10) - 0
		{"harder card", true, 2.5, 1, 3, 325},
		// 100*2 + max(0, 50 - 30*10) - 0
		{"bonus gone after five seconds", true, 30, 1, 2, 200},
		// 100*1 + 0 - 10*25, floored
		{"floored at min score", true, 600, 11, 1, 10},
		{"time bonus exhausted", true, 1000, 1, 1, 100},
		{"incorrect is zero", false, 0, 1, 5, 0},
		{"incorrect ignores everything", false, -10, 0, 3, 0},
		{"attempts below one count as one", true, 0, 0, 1, 150},
		{"negative time counts as zero", true, -3, 1, 1, 150},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateScore(tc.isCorrect, tc.time, tc.attempts, tc.difficulty)
			if got != tc.expected {
				t.Errorf("Expected score %d, but got %d", tc.expected, got)
			}
		})
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.BaseScore != 100 || p.TimeBonusMax != 50 || p.TimeBonusRate != 10 || p.AttemptPenalty != 25 || p.MinScore != 10 {
		t.Fatalf("Unexpected default parameters: %+v", p)
	}
	// 100 + (50 - 0.25*10) = 147.5 rounds half away from zero.
	if got := p.CalculateScore(true, 0.25, 1, 1); got != 148 {
		t.Errorf("Expected 148 after 250ms, got %d", got)
	}
	bonusByTime := map[float64]int{0: 150, 5: 100, 10: 100, 30: 100, 60: 100}
	for seconds, want := range bonusByTime {
		if got := p.CalculateScore(true, seconds, 1, 1); got != want {
			t.Errorf("Expected %d after %vs, got %d", want, seconds, got)
		}
	}
	if got := p.CalculateScore(true, 0, 2, 1); got != 125 {
		t.Errorf("Expected one failed attempt to cost 25 (125), got %d", got)
	}
}

func TestCalculateScoreMonotonic(t *testing.T) {
	p := DefaultParams()
	for difficulty := 1; difficulty <= 5; difficulty++ {
		prev := math.MaxInt
		for seconds := 0; seconds <= 800; seconds += 3 {
			got := p.CalculateScore(true, float64(seconds), 1, difficulty)
			if got > prev {
				t.Fatalf("difficulty %d: score rose from %d to %d at t=%d", difficulty, prev, got, seconds)
			}
			if got < int(p.MinScore) {
				t.Fatalf("difficulty %d: score %d below minimum", difficulty, got)
			}
			prev = got
		}

		prev = math.MaxInt
		for attempts := 1; attempts <= 50; attempts++ {
			got := p.CalculateScore(true, 1, attempts, difficulty)
			if got > prev {
				t.Fatalf("difficulty %d: score rose from %d to %d at attempts=%d", difficulty, prev, got, attempts)
			}
			if got < int(p.MinScore) {
				t.Fatalf("difficulty %d: score %d below minimum", difficulty, got)
			}
			prev = got
		}
	}
}

func TestCalculateScoreExtremes(t *testing.T) {
	p := DefaultParams()
	if got := p.CalculateScore(true, math.MaxFloat64, math.MaxInt32, 1); got != 10 {
		t.Errorf("Expected extreme inputs to floor at 10, got %d", got)
	}
	if got := p.CalculateScore(true, math.Inf(1), 1, 1); got != 100 {
		t.Errorf("Expected an infinite time to lose only the bonus, got %d", got)
	}
}

func TestCustomParams(t *testing.T) {
	p := &Params{BaseScore: 10, TimeBonusMax: 5, TimeBonusRate: 1, AttemptPenalty: 3, MinScore: 1}
	// 10*2 + (5 - 2/1) - 3
	if got := p.CalculateScore(true, 2, 2, 2); got != 20 {
		t.Errorf("Expected 20, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("Expected defaults to be valid, got %v", err)
	}

	bad := DefaultParams()
	bad.MinScore = -1
	if err := bad.Validate(); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams for a negative min score, got %v", err)
	}

	negativeRate := DefaultParams()
	negativeRate.TimeBonusRate = -1
	if err := negativeRate.Validate(); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams for a negative rate, got %v", err)
	}

	zeroRate := DefaultParams()
	zeroRate.TimeBonusRate = 0
	if err := zeroRate.Validate(); err != nil {
		t.Errorf("Expected a zero rate to be valid, got %v", err)
	}
	if got := zeroRate.CalculateScore(true, math.Inf(1), 1, 1); got != 150 {
		t.Errorf("Expected a zero rate to keep the full bonus, got %d", got)
	}

	nan := DefaultParams()
	nan.TimeBonusRate = math.NaN()
	if err := nan.Validate(); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams for NaN, got %v", err)
	}
}
