package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrMatchComplete  = errors.New("match already complete")
	ErrIncompleteTeam = errors.New("each team needs two players")
)

// Status describes where a match is in its lifecycle.
type Status string

const (
	// StatusAwaitingFirstPoint is an in-progress game still at 0-0.
	StatusAwaitingFirstPoint Status = "awaiting_first_point"
	// StatusInProgress is a game with at least one rally played.
	StatusInProgress Status = "in_progress"
	// StatusGameComplete follows the rally that ended a game when the match continues.
	StatusGameComplete Status = "game_complete"
	// StatusMatchComplete is terminal. No further scoring or undo is accepted.
	StatusMatchComplete Status = "match_complete"
)

// MatchResult is the record handed to persistence when a match ends.
type MatchResult struct {
	Winner          Side        `json:"winner"`
	Scores          []GameScore `json:"scores"`
	DurationSeconds int         `json:"durationSeconds"`
}

// Match is the doubles scoring state machine for a single match.
// It is not safe for concurrent use; callers serialize access.
type Match struct {
	rules Rules
	clock *Clock

	startA Team
	startB Team

	scores        []GameScore
	current       int
	court         courtState
	gameCompleted bool

	history History
	result  *MatchResult
}

// NewMatch prepares a match at 0-0 in the first game with firstServer to serve.
// The clock is stopped by the match on completion; starting it is up to the caller.
func NewMatch(rules Rules, teamA, teamB Team, firstServer Side, clock *Clock) (*Match, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if !teamA.Complete() || !teamB.Complete() {
		return nil, ErrIncompleteTeam
	}
	if !firstServer.Valid() {
		return nil, fmt.Errorf("first server: %w", ErrInvalidSide)
	}
	if clock == nil {
		clock = NewClock(nil)
	}

	return &Match{
		rules:  rules,
		clock:  clock,
		startA: teamA,
		startB: teamB,
		scores: []GameScore{{}},
		court: courtState{
			Server: firstServer,
			TeamA:  teamA,
			TeamB:  teamB,
		},
	}, nil
}

// AddPoint records a rally won by side.
//
// The state before the rally is pushed onto the undo history, the serve and
// positions are resolved, the score is incremented, and the game and match
// win conditions are evaluated. The returned result is non-nil only for the
// rally that completes the match.
func (m *Match) AddPoint(side Side) (*MatchResult, error) {
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	if m.result != nil {
		return nil, ErrMatchComplete
	}

	m.history.Push(m.snapshot())

	m.court = m.court.afterRally(side)
	m.scores[m.current] = m.scores[m.current].plus(side)
	m.gameCompleted = false

	if winner, ok := m.rules.GameWinner(m.scores[m.current]); ok {
		m.endGame(winner)
	}

	if m.result != nil {
		res := m.copyResult()
		return &res, nil
	}
	return nil, nil
}

func (m *Match) endGame(winner Side) {
	winsA, winsB := m.Wins()
	if winsA >= m.rules.GamesToWin || winsB >= m.rules.GamesToWin || len(m.scores) >= m.rules.MaxGames {
		m.complete(winsA, winsB)
		return
	}

	m.scores = append(m.scores, GameScore{})
	m.current++
	m.gameCompleted = true
	m.court = courtState{
		Server: winner,
		TeamA:  m.startA,
		TeamB:  m.startB,
	}
}

func (m *Match) complete(winsA, winsB int) {
	m.clock.Stop()

	winner := SideA
	if winsB > winsA {
		winner = SideB
	}
	m.result = &MatchResult{
		Winner:          winner,
		Scores:          m.Scores(),
		DurationSeconds: m.clock.ElapsedSeconds(),
	}
}

// Undo restores the state from before the most recent AddPoint.
// It reports false when there is nothing to undo or the match is complete.
// Elapsed time is not rolled back.
func (m *Match) Undo() bool {
	if !m.CanUndo() {
		return false
	}
	snap, ok := m.history.Pop()
	if !ok {
		return false
	}
	m.restore(snap)
	return true
}

// CanAddPoint reports whether scoring is currently accepted.
func (m *Match) CanAddPoint() bool {
	return m.result == nil
}

// CanUndo reports whether Undo would change state.
func (m *Match) CanUndo() bool {
	return m.result == nil && m.history.Len() > 0
}

func (m *Match) snapshot() Snapshot {
	return Snapshot{
		Scores:        m.scores,
		CurrentGame:   m.current,
		Server:        m.court.Server,
		TeamA:         m.court.TeamA,
		TeamB:         m.court.TeamB,
		GameCompleted: m.gameCompleted,
	}
}

func (m *Match) restore(s Snapshot) {
	m.scores = s.Scores
	m.current = s.CurrentGame
	m.court = courtState{Server: s.Server, TeamA: s.TeamA, TeamB: s.TeamB}
	m.gameCompleted = s.GameCompleted
}

// Status returns the current lifecycle state.
func (m *Match) Status() Status {
	switch {
	case m.result != nil:
		return StatusMatchComplete
	case m.gameCompleted:
		return StatusGameComplete
	case m.scores[m.current] == (GameScore{}):
		return StatusAwaitingFirstPoint
	default:
		return StatusInProgress
	}
}

// Wins counts the games each side has won so far.
func (m *Match) Wins() (a, b int) {
	for _, g := range m.scores {
		winner, ok := m.rules.GameWinner(g)
		if !ok {
			continue
		}
		if winner == SideA {
			a++
		} else {
			b++
		}
	}
	return a, b
}

// Result returns the final result once the match is complete.
func (m *Match) Result() (MatchResult, bool) {
	if m.result == nil {
		return MatchResult{}, false
	}
	return m.copyResult(), true
}

func (m *Match) copyResult() MatchResult {
	res := *m.result
	res.Scores = append([]GameScore(nil), res.Scores...)
	return res
}

// Scores returns a copy of every game score, the current game last.
func (m *Match) Scores() []GameScore {
	return append([]GameScore(nil), m.scores...)
}

// CurrentGame returns the zero-based index of the game in play.
func (m *Match) CurrentGame() int {
	return m.current
}

// Server returns the side currently serving.
func (m *Match) Server() Side {
	return m.court.Server
}

// Team returns side s in its current court order.
func (m *Match) Team(s Side) Team {
	return m.court.team(s)
}

// ServingCourt is derived from the serving side's score in the current game.
func (m *Match) ServingCourt() Court {
	return ServiceCourt(m.scores[m.current].Of(m.court.Server))
}

// ServingPlayer returns the player standing in the serving court of the serving side.
func (m *Match) ServingPlayer() Player {
	return m.court.team(m.court.Server).At(m.ServingCourt())
}

// ReceivingPlayer returns the opponent diagonally across from the server,
// who stands in the receiving side's court of the same name.
func (m *Match) ReceivingPlayer() Player {
	return m.court.team(m.court.Server.Opponent()).At(m.ServingCourt())
}

// Rules returns the thresholds the match was created with.
func (m *Match) Rules() Rules {
	return m.rules
}

// Clock returns the clock driving the match duration.
func (m *Match) Clock() *Clock {
	return m.clock
}
