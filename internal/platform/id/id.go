package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// TimeOrdered yields UUIDv7 values: a millisecond timestamp followed by
// random bits, so ids sort by creation time and do not collide.
type TimeOrdered struct{}

func (TimeOrdered) New() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}
