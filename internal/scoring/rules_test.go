package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_GameWinner(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name   string
		score  GameScore
		winner Side
		over   bool
	}{
		{name: "fresh game", score: GameScore{0, 0}},
		{name: "15-13 needs margin", score: GameScore{15, 13}, winner: SideA, over: true},
		{name: "15-14 not terminal", score: GameScore{15, 14}},
		{name: "16-14 margin win", score: GameScore{16, 14}, winner: SideA, over: true},
		{name: "15-0 shutout", score: GameScore{15, 0}, winner: SideA, over: true},
		{name: "14-0 below minimum", score: GameScore{14, 0}},
		{name: "19-18 deuce", score: GameScore{19, 18}},
		{name: "20-19 hard cap", score: GameScore{20, 19}, winner: SideA, over: true},
		{name: "19-20 hard cap for B", score: GameScore{19, 20}, winner: SideB, over: true},
		{name: "13-15 margin win for B", score: GameScore{13, 15}, winner: SideB, over: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, over := rules.GameWinner(tt.score)
			assert.Equal(t, tt.over, over)
			assert.Equal(t, tt.winner, winner)
		})
	}
}

func TestRules_Validate(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())

	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"zero minimum", func(r *Rules) { r.MinPointsToWin = 0 }},
		{"negative minimum", func(r *Rules) { r.MinPointsToWin = -3 }},
		{"zero margin", func(r *Rules) { r.MarginToWin = 0 }},
		{"cap equal to minimum", func(r *Rules) { r.HardCap = r.MinPointsToWin }},
		{"cap below minimum", func(r *Rules) { r.HardCap = 10 }},
		{"no games to win", func(r *Rules) { r.GamesToWin = 0 }},
		{"max games mismatch", func(r *Rules) { r.MaxGames = 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidRules)
		})
	}
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide(" b ")
	require.NoError(t, err)
	assert.Equal(t, SideB, s)

	_, err = ParseSide("C")
	assert.ErrorIs(t, err, ErrInvalidSide)

	assert.Equal(t, SideB, SideA.Opponent())
	assert.Equal(t, SideA, SideB.Opponent())
}
