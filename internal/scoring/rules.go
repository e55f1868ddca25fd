package scoring

import (
	"errors"
	"fmt"
)

// ErrInvalidRules is returned when a Rules value cannot describe a playable match.
var ErrInvalidRules = errors.New("invalid scoring rules")

const (
	DefaultMinPointsToWin = 15
	DefaultMarginToWin    = 2
	DefaultHardCap        = 20
	DefaultGamesToWin     = 2
	DefaultMaxGames       = 3
)

// Rules holds the game and match win thresholds.
//
// The defaults describe the club's quick-game format: first to 15 with a
// two point lead, and a hard cap at 20 where the side reaching the cap wins
// even by a single point. A match is best of three games.
type Rules struct {
	MinPointsToWin int `mapstructure:"min_points_to_win"`
	MarginToWin    int `mapstructure:"margin_to_win"`
	HardCap        int `mapstructure:"hard_cap"`
	GamesToWin     int `mapstructure:"games_to_win"`
	MaxGames       int `mapstructure:"max_games"`
}

// DefaultRules returns the quick-game format.
func DefaultRules() Rules {
	return Rules{
		MinPointsToWin: DefaultMinPointsToWin,
		MarginToWin:    DefaultMarginToWin,
		HardCap:        DefaultHardCap,
		GamesToWin:     DefaultGamesToWin,
		MaxGames:       DefaultMaxGames,
	}
}

// Validate rejects thresholds that could never end a game or a match.
func (r Rules) Validate() error {
	switch {
	case r.MinPointsToWin <= 0:
		return fmt.Errorf("%w: min points to win must be positive, got %d", ErrInvalidRules, r.MinPointsToWin)
	case r.MarginToWin <= 0:
		return fmt.Errorf("%w: margin to win must be positive, got %d", ErrInvalidRules, r.MarginToWin)
	case r.HardCap <= r.MinPointsToWin:
		return fmt.Errorf("%w: hard cap %d must exceed min points to win %d", ErrInvalidRules, r.HardCap, r.MinPointsToWin)
	case r.GamesToWin <= 0:
		return fmt.Errorf("%w: games to win must be positive, got %d", ErrInvalidRules, r.GamesToWin)
	case r.MaxGames != 2*r.GamesToWin-1:
		return fmt.Errorf("%w: max games %d must equal 2*games to win - 1", ErrInvalidRules, r.MaxGames)
	}
	return nil
}

// GameWinner reports which side, if any, has won the game g.
// A side wins once it holds at least MinPointsToWin with a lead of
// MarginToWin, or as soon as it reaches HardCap regardless of the lead.
func (r Rules) GameWinner(g GameScore) (Side, bool) {
	for _, s := range [...]Side{SideA, SideB} {
		mine, theirs := g.Of(s), g.Of(s.Opponent())
		if mine == r.HardCap {
			return s, true
		}
		if mine >= r.MinPointsToWin && mine-theirs >= r.MarginToWin {
			return s, true
		}
	}
	return "", false
}
