package session

import (
	"context"
	"errors"
	"time"

	"github.com/cheildo/courtside/internal/scoring"
)

// Phase is the stage of an umpiring session. Phases only move forward.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseToss     Phase = "toss"
	PhaseLive     Phase = "live"
	PhaseFinished Phase = "finished"
	PhaseExited   Phase = "exited"
)

var (
	ErrWrongPhase      = errors.New("action not allowed in current phase")
	ErrIncompleteTeams = errors.New("both teams need exactly two players")
	ErrDuplicatePlayer = errors.New("a player can only appear once in a match")
	ErrSessionNotFound = errors.New("session not found")
)

// Outcome is what the persistence collaborator receives when a match ends.
type Outcome struct {
	MatchID     string
	TeamA       scoring.Team
	TeamB       scoring.Team
	Result      scoring.MatchResult
	CompletedAt time.Time
}

// ResultSink accepts finished matches. It is called once per match, off the scoring path.
type ResultSink interface {
	Submit(ctx context.Context, outcome Outcome) error
}

// Observer is told about every state change of a session.
// Views carry a Version so observers can drop stale updates.
type Observer interface {
	SessionUpdated(ctx context.Context, view View)
	SessionClosed(ctx context.Context, matchID string)
}

// View is the externally visible state of a session.
type View struct {
	MatchID     string        `json:"matchID"`
	Phase       Phase         `json:"phase"`
	Version     uint64        `json:"version"`
	TeamA       scoring.Team  `json:"teamA"`
	TeamB       scoring.Team  `json:"teamB"`
	FirstServer scoring.Side  `json:"firstServer,omitempty"`
	Match       *scoring.View `json:"match,omitempty"`
	CanSetTeams bool          `json:"canSetTeams"`
	CanToss     bool          `json:"canToss"`
}

// Options configures new controllers.
type Options struct {
	Rules        scoring.Rules
	Sink         ResultSink
	Observers    []Observer
	TickInterval time.Duration
	Now          func() time.Time
	// Retention is how long a registry keeps a closed session readable.
	Retention time.Duration
}

const (
	defaultTickInterval = time.Second
	defaultRetention    = 10 * time.Minute
	handoffTimeout      = 10 * time.Second
	notifyTimeout       = 2 * time.Second
)
