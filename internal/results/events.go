package results

import (
	"time"

	"github.com/google/uuid"

	"github.com/cheildo/courtside/internal/scoring"
	"github.com/cheildo/courtside/internal/session"
)

// PlayerRef identifies a player in a published result.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatchCompletedEvent is the payload published when a match finishes.
type MatchCompletedEvent struct {
	EventID         string              `json:"eventID"`
	MatchID         string              `json:"matchID"`
	Winner          scoring.Side        `json:"winner"`
	Games           []scoring.GameScore `json:"games"`
	DurationSeconds int                 `json:"durationSeconds"`
	TeamA           []PlayerRef         `json:"teamA"`
	TeamB           []PlayerRef         `json:"teamB"`
	CompletedAt     time.Time           `json:"completedAt"`
}

// NewMatchCompletedEvent converts a session outcome into its published form.
func NewMatchCompletedEvent(o session.Outcome) MatchCompletedEvent {
	return MatchCompletedEvent{
		EventID:         uuid.NewString(),
		MatchID:         o.MatchID,
		Winner:          o.Result.Winner,
		Games:           append([]scoring.GameScore(nil), o.Result.Scores...),
		DurationSeconds: o.Result.DurationSeconds,
		TeamA:           playerRefs(o.TeamA),
		TeamB:           playerRefs(o.TeamB),
		CompletedAt:     o.CompletedAt,
	}
}

// Team returns the players of side s.
func (e MatchCompletedEvent) Team(s scoring.Side) []PlayerRef {
	if s == scoring.SideA {
		return e.TeamA
	}
	return e.TeamB
}

func playerRefs(t scoring.Team) []PlayerRef {
	return []PlayerRef{
		{ID: t[0].ID, Name: t[0].Name},
		{ID: t[1].ID, Name: t[1].Name},
	}
}

func playerIDs(refs []PlayerRef) []string {
	ids := make([]string, len(refs))
	for i, p := range refs {
		ids[i] = p.ID
	}
	return ids
}
