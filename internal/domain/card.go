package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// CardID identifies a card. Upstream event pools use either numeric or
// string ids, so it decodes from both and always encodes as a string.
type CardID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *CardID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = CardID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("domain: invalid card id: %s", data)
	}
	*id = CardID(n.String())
	return nil
}

// Card is a single historical event. Cards are supplied by the event pool
// and never modified by the engine.
type Card struct {
	ID           CardID `json:"id"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category" validate:"required"`
	Difficulty   int    `json:"difficulty" validate:"min=1,max=5"`
	DateOccurred string `json:"dateOccurred" validate:"isodate"`
}

// Validate reports whether the card can be played: it needs a title, a
// category, a difficulty in 1..5 and a parseable date.
func (c Card) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCard, c.Title, err)
	}
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // local date-time, no offset
	"2006-01",
	"2006",
}

// ParseDate parses an ISO-8601 calendar date or date-time, with or without
// an offset and fractional seconds. Years must have four digits; BCE dates
// are not supported. The bool is false when the value matches none of the
// accepted layouts.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Time returns the instant the event occurred.
// A malformed DateOccurred yields ok == false; callers treat such cards
// like NaN and every comparison against them fails.
func (c Card) Time() (t time.Time, ok bool) {
	return ParseDate(c.DateOccurred)
}

// Year returns the calendar year of the event.
func (c Card) Year() (int, bool) {
	t, ok := c.Time()
	if !ok {
		return 0, false
	}
	return t.Year(), true
}

// Decade returns the first year of the event's decade, e.g. 1980 for 1989.
func (c Card) Decade() (int, bool) {
	y, ok := c.Year()
	if !ok {
		return 0, false
	}
	return y - y%10, true
}
