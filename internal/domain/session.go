package domain

import (
	"encoding"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the lifecycle state of a game session.
type Status int

const (
	Playing   Status = iota + 1 // Cards remain in play.
	Won                         // The player emptied their hand.
	Lost                        // The opponent emptied its hand first.
	Abandoned                   // The game was given up.
)

var (
	statusNames  = [...]string{Playing: "playing", Won: "won", Lost: "lost", Abandoned: "abandoned"}
	statusByName = map[string]Status{
		"playing":   Playing,
		"won":       Won,
		"lost":      Lost,
		"abandoned": Abandoned,
	}
)

var (
	_ fmt.Stringer             = Status(0)
	_ encoding.TextMarshaler   = Status(0)
	_ encoding.TextUnmarshaler = (*Status)(nil)
)

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	return s >= Playing && s <= Abandoned
}

// IsOver reports whether the session has reached a terminal status.
func (s Status) IsOver() bool {
	return s.IsValid() && s != Playing
}

func (s Status) String() string {
	if s.IsValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, ok := statusByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, text)
	}
	*s = v
	return nil
}

// Settings are the player-chosen options for a game.
type Settings struct {
	Difficulty string   `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard expert"`
	CardCount  int      `json:"cardCount,omitempty" validate:"omitempty,min=1,max=50"`
	Categories []string `json:"categories,omitempty" validate:"dive,required"`
}

// DefaultCardCount is the hand size used when Settings.CardCount is zero.
const DefaultCardCount = 5

// HandSize returns the configured hand size, falling back to DefaultCardCount.
func (s Settings) HandSize() int {
	if s.CardCount <= 0 {
		return DefaultCardCount
	}
	return s.CardCount
}

// Validate checks the settings against their field constraints.
func (s Settings) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// GameSession is the complete state of one game. Its JSON form is the
// contract with the persistence layer, so field names must not change.
// Sessions come from game.CreateGameSession; the zero value has no valid
// Status and cannot be marshalled.
type GameSession struct {
	SessionID  string         `json:"sessionId"`
	Timeline   Timeline       `json:"timeline"`
	PlayerHand []Card         `json:"playerHand"`
	Settings   Settings       `json:"settings"`
	Score      int            `json:"score"`
	StartTime  int64          `json:"startTime"` // epoch milliseconds
	Attempts   map[CardID]int `json:"attempts"`
	HintsUsed  int            `json:"hintsUsed"`
	Status     Status         `json:"status"`
}

// Started returns StartTime as a time.Time.
func (s *GameSession) Started() time.Time {
	return time.UnixMilli(s.StartTime)
}

// HandIndex returns the index of the card with id in the player's hand, or -1.
func (s *GameSession) HandIndex(id CardID) int {
	for i, c := range s.PlayerHand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// MarshalSession encodes a session in its persistence form. It fails with
// ErrInvalidStatus when Status is not one of the defined statuses.
func MarshalSession(s *GameSession) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSession decodes a session from its persistence form.
func UnmarshalSession(data []byte) (*GameSession, error) {
	var s GameSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Attempts == nil {
		s.Attempts = make(map[CardID]int)
	}
	return &s, nil
}

// GameResult records the outcome of a finished game.
type GameResult struct {
	SessionID  string
	Status     Status
	Score      int
	AIScore    int
	Opponent   string
	Difficulty string
	FinishedAt time.Time
}
