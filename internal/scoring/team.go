package scoring

import "fmt"

// Player is an opaque participant identity. It never changes once a match starts.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Court identifies a service court relative to a team's own baseline.
type Court int

const (
	// CourtRight is slot 0 of a Team and the court served from on even scores.
	CourtRight Court = 0
	// CourtLeft is slot 1 of a Team and the court served from on odd scores.
	CourtLeft Court = 1
)

func (c Court) String() string {
	if c == CourtLeft {
		return "left"
	}
	return "right"
}

// MarshalText lets Court appear as "right"/"left" in JSON views.
func (c Court) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Court) UnmarshalText(b []byte) error {
	switch string(b) {
	case "right":
		*c = CourtRight
	case "left":
		*c = CourtLeft
	default:
		return fmt.Errorf("unknown court %q", b)
	}
	return nil
}

// Team is a doubles pair ordered by court position.
// Being an array, a Team is copied by value wherever it is assigned.
type Team [2]Player

// Swapped returns the team with its two players exchanging courts.
func (t Team) Swapped() Team {
	return Team{t[1], t[0]}
}

// At returns the player currently standing in court c.
func (t Team) At(c Court) Player {
	return t[c]
}

// Complete reports whether both slots hold a player with an identity.
func (t Team) Complete() bool {
	return t[0].ID != "" && t[1].ID != ""
}

// Has reports whether the player with the given ID is on this team.
func (t Team) Has(playerID string) bool {
	return t[0].ID == playerID || t[1].ID == playerID
}

// GameScore holds both sides' points for a single game.
type GameScore struct {
	A int `json:"A"`
	B int `json:"B"`
}

// Of returns the points held by side s.
func (g GameScore) Of(s Side) int {
	if s == SideA {
		return g.A
	}
	return g.B
}

func (g GameScore) plus(s Side) GameScore {
	if s == SideA {
		g.A++
	} else {
		g.B++
	}
	return g
}
