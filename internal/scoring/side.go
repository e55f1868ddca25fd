package scoring

import (
	"errors"
	"strings"
)

// ErrInvalidSide is returned when a side label is neither "A" nor "B".
var ErrInvalidSide = errors.New("side must be A or B")

// Side labels one of the two competing teams.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Valid reports whether s names one of the two teams.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// ParseSide converts user input such as "a" or " B " into a Side.
func ParseSide(v string) (Side, error) {
	s := Side(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", ErrInvalidSide
	}
	return s, nil
}
