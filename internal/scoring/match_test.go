package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = Player{ID: "p-alice", Name: "Alice"}
	bruno = Player{ID: "p-bruno", Name: "Bruno"}
	chen  = Player{ID: "p-chen", Name: "Chen"}
	dara  = Player{ID: "p-dara", Name: "Dara"}

	teamA = Team{alice, bruno}
	teamB = Team{chen, dara}
)

func newTestMatch(t *testing.T, firstServer Side) (*Match, *fakeTime) {
	t.Helper()
	ft := newFakeTime()
	clock := NewClock(ft.now)
	m, err := NewMatch(DefaultRules(), teamA, teamB, firstServer, clock)
	require.NoError(t, err)
	clock.Start()
	return m, ft
}

func addPoints(t *testing.T, m *Match, side Side, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := m.AddPoint(side)
		require.NoError(t, err)
	}
}

// playGame drives the current game to the given final score. Rallies
// alternate until the loser's total is reached so the game cannot end early.
func playGame(t *testing.T, m *Match, final GameScore) *MatchResult {
	t.Helper()
	winner, ok := m.Rules().GameWinner(final)
	require.True(t, ok, "final score %v must be terminal", final)
	loser := winner.Opponent()

	var res *MatchResult
	add := func(side Side) {
		r, err := m.AddPoint(side)
		require.NoError(t, err)
		res = r
	}
	for i := 0; i < final.Of(loser); i++ {
		add(loser)
		add(winner)
	}
	for i := final.Of(loser); i < final.Of(winner); i++ {
		add(winner)
	}
	return res
}

func TestNewMatch_Validation(t *testing.T) {
	_, err := NewMatch(Rules{}, teamA, teamB, SideA, nil)
	assert.ErrorIs(t, err, ErrInvalidRules)

	_, err = NewMatch(DefaultRules(), Team{alice}, teamB, SideA, nil)
	assert.ErrorIs(t, err, ErrIncompleteTeam)

	_, err = NewMatch(DefaultRules(), teamA, teamB, Side("C"), nil)
	assert.ErrorIs(t, err, ErrInvalidSide)

	m, err := NewMatch(DefaultRules(), teamA, teamB, SideB, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingFirstPoint, m.Status())
	assert.Equal(t, []GameScore{{}}, m.Scores())
	assert.Equal(t, SideB, m.Server())
	assert.False(t, m.CanUndo())
}

func TestMatch_ServingSideWinsRally(t *testing.T) {
	m, _ := newTestMatch(t, SideA)
	assert.Equal(t, CourtRight, m.ServingCourt())
	assert.Equal(t, alice, m.ServingPlayer())
	assert.Equal(t, chen, m.ReceivingPlayer())

	_, err := m.AddPoint(SideA)
	require.NoError(t, err)

	assert.Equal(t, SideA, m.Server(), "server keeps the serve")
	assert.Equal(t, Team{bruno, alice}, m.Team(SideA), "serving pair swaps courts")
	assert.Equal(t, teamB, m.Team(SideB), "receivers stay put")
	assert.Equal(t, CourtLeft, m.ServingCourt())
	assert.Equal(t, alice, m.ServingPlayer(), "same server moves to the left court")
	assert.Equal(t, StatusInProgress, m.Status())
}

func TestMatch_ReceivingSideWinsRally(t *testing.T) {
	m, _ := newTestMatch(t, SideA)

	_, err := m.AddPoint(SideB)
	require.NoError(t, err)

	assert.Equal(t, SideB, m.Server(), "serve passes to the rally winner")
	assert.Equal(t, teamA, m.Team(SideA))
	assert.Equal(t, teamB, m.Team(SideB))
	assert.Equal(t, CourtLeft, m.ServingCourt(), "B serves from the left on an odd score")
	assert.Equal(t, dara, m.ServingPlayer())
	assert.Equal(t, bruno, m.ReceivingPlayer())
}

func TestMatch_ServeInvariantsOverRallySequence(t *testing.T) {
	m, _ := newTestMatch(t, SideB)
	rallies := []Side{SideB, SideB, SideA, SideA, SideB, SideA, SideA, SideA, SideB, SideB, SideB, SideA}

	for _, side := range rallies {
		serverBefore := m.Server()
		aBefore, bBefore := m.Team(SideA), m.Team(SideB)
		scoreBefore := m.Scores()[m.CurrentGame()]

		_, err := m.AddPoint(side)
		require.NoError(t, err)

		scoreAfter := m.Scores()[m.CurrentGame()]
		assert.Equal(t, scoreBefore.Of(side)+1, scoreAfter.Of(side))
		assert.Equal(t, scoreBefore.Of(side.Opponent()), scoreAfter.Of(side.Opponent()))

		if side == serverBefore {
			assert.Equal(t, serverBefore, m.Server())
			if side == SideA {
				assert.Equal(t, aBefore.Swapped(), m.Team(SideA))
				assert.Equal(t, bBefore, m.Team(SideB))
			} else {
				assert.Equal(t, bBefore.Swapped(), m.Team(SideB))
				assert.Equal(t, aBefore, m.Team(SideA))
			}
		} else {
			assert.Equal(t, side, m.Server())
			assert.Equal(t, aBefore, m.Team(SideA))
			assert.Equal(t, bBefore, m.Team(SideB))
		}

		assert.Equal(t, ServiceCourt(scoreAfter.Of(m.Server())), m.ServingCourt())
	}
}

func TestMatch_HardCapEndsGame(t *testing.T) {
	m, _ := newTestMatch(t, SideA)

	for i := 0; i < 19; i++ {
		addPoints(t, m, SideA, 1)
		addPoints(t, m, SideB, 1)
	}
	assert.Equal(t, GameScore{A: 19, B: 19}, m.Scores()[0])
	assert.Equal(t, 0, m.CurrentGame())

	addPoints(t, m, SideA, 1)

	assert.Equal(t, GameScore{A: 20, B: 19}, m.Scores()[0])
	assert.Equal(t, 1, m.CurrentGame())
	winsA, winsB := m.Wins()
	assert.Equal(t, 1, winsA)
	assert.Equal(t, 0, winsB)
}

func TestMatch_MarginWin(t *testing.T) {
	m, _ := newTestMatch(t, SideA)

	addPoints(t, m, SideB, 13)
	addPoints(t, m, SideA, 15)
	assert.Equal(t, 1, m.CurrentGame(), "15-13 ends the game")

	m2, _ := newTestMatch(t, SideA)
	addPoints(t, m2, SideB, 14)
	addPoints(t, m2, SideA, 15)
	assert.Equal(t, 0, m2.CurrentGame(), "15-14 is not terminal")
	addPoints(t, m2, SideA, 1)
	assert.Equal(t, 1, m2.CurrentGame(), "16-14 is terminal")
}

func TestMatch_NextGameReset(t *testing.T) {
	m, _ := newTestMatch(t, SideA)

	// Scramble positions and serve before B takes the first game.
	addPoints(t, m, SideA, 3)
	addPoints(t, m, SideB, 15)

	assert.Equal(t, StatusGameComplete, m.Status())
	assert.Equal(t, 1, m.CurrentGame())
	assert.Equal(t, []GameScore{{A: 3, B: 15}, {}}, m.Scores())
	assert.Equal(t, SideB, m.Server(), "game winner serves first")
	assert.Equal(t, teamA, m.Team(SideA))
	assert.Equal(t, teamB, m.Team(SideB))
	assert.Equal(t, chen, m.ServingPlayer())

	addPoints(t, m, SideA, 1)
	assert.Equal(t, StatusInProgress, m.Status())
}

func TestMatch_ThreeGameMatch(t *testing.T) {
	m, ft := newTestMatch(t, SideA)

	assert.Nil(t, playGame(t, m, GameScore{A: 15, B: 10}))
	ft.advance(10 * time.Minute)
	assert.Nil(t, playGame(t, m, GameScore{A: 9, B: 15}))
	ft.advance(12 * time.Minute)
	res := playGame(t, m, GameScore{A: 15, B: 12})

	require.NotNil(t, res)
	assert.Equal(t, SideA, res.Winner)
	assert.Equal(t, []GameScore{{A: 15, B: 10}, {A: 9, B: 15}, {A: 15, B: 12}}, res.Scores)
	assert.Equal(t, 22*60, res.DurationSeconds)

	winsA, winsB := m.Wins()
	assert.Equal(t, 2, winsA)
	assert.Equal(t, 1, winsB)
	assert.Equal(t, StatusMatchComplete, m.Status())
	assert.True(t, m.Clock().Stopped())

	v := m.View()
	assert.Equal(t, SideA, v.Winner)
	assert.False(t, v.CanAddPoint)
	assert.False(t, v.CanUndo)
	assert.Equal(t, "22:00", v.Clock)
}

func TestMatch_StraightGamesEndAfterTwo(t *testing.T) {
	m, _ := newTestMatch(t, SideB)

	assert.Nil(t, playGame(t, m, GameScore{A: 4, B: 15}))
	res := playGame(t, m, GameScore{A: 18, B: 20})

	require.NotNil(t, res)
	assert.Equal(t, SideB, res.Winner)
	assert.Len(t, res.Scores, 2, "no third game is created")
	assert.Len(t, m.Scores(), 2)
}

func TestMatch_RejectsScoringAfterCompletion(t *testing.T) {
	m, _ := newTestMatch(t, SideA)
	playGame(t, m, GameScore{A: 15, B: 0})
	playGame(t, m, GameScore{A: 15, B: 0})

	before := m.Scores()
	res, err := m.AddPoint(SideB)
	assert.ErrorIs(t, err, ErrMatchComplete)
	assert.Nil(t, res)
	assert.Equal(t, before, m.Scores())

	final, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, SideA, final.Winner)

	assert.False(t, m.Undo(), "undo is frozen once the match is complete")
	assert.Equal(t, before, m.Scores())
}

func TestMatch_InvalidSide(t *testing.T) {
	m, _ := newTestMatch(t, SideA)
	_, err := m.AddPoint(Side("X"))
	assert.ErrorIs(t, err, ErrInvalidSide)
	assert.False(t, m.CanUndo(), "rejected input leaves no history")
}

func TestMatch_UndoRoundTrip(t *testing.T) {
	m, ft := newTestMatch(t, SideA)
	addPoints(t, m, SideA, 2)
	addPoints(t, m, SideB, 1)

	before := m.View()
	ft.advance(30 * time.Second)

	for _, side := range []Side{SideA, SideB} {
		addPoints(t, m, side, 1)
		require.True(t, m.Undo())

		after := m.View()
		assert.Equal(t, before.ElapsedSeconds+30, after.ElapsedSeconds, "undo does not roll back the clock")
		after.ElapsedSeconds, after.Clock = before.ElapsedSeconds, before.Clock
		assert.Equal(t, before, after)
	}
}

func TestMatch_UndoAcrossGameBoundary(t *testing.T) {
	m, _ := newTestMatch(t, SideA)
	addPoints(t, m, SideB, 5)
	addPoints(t, m, SideA, 14)
	before := m.View()

	addPoints(t, m, SideA, 1)
	require.Equal(t, 1, m.CurrentGame())

	require.True(t, m.Undo())
	assert.Equal(t, before, m.View())
	assert.Equal(t, 0, m.CurrentGame())
	assert.Len(t, m.Scores(), 1)
}

func TestMatch_UndoEmptyIsNoop(t *testing.T) {
	m, _ := newTestMatch(t, SideA)
	before := m.View()

	assert.False(t, m.Undo())
	assert.Equal(t, before, m.View())

	addPoints(t, m, SideB, 3)
	for m.Undo() {
	}
	assert.Equal(t, before, m.View())
}
