package results

import (
	"context"
	"errors"
	"fmt"

	"github.com/cheildo/courtside/internal/scoring"
)

// ErrInvalidEvent marks a result that does not describe a finished match.
var ErrInvalidEvent = errors.New("invalid match result")

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// Service defines the business logic for recorded results.
type Service interface {
	Record(ctx context.Context, event MatchCompletedEvent) error
	RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error)
	PlayerStats(ctx context.Context, playerID string) (*PlayerStats, error)
}

type service struct {
	repo  Repository
	rules scoring.Rules
}

// NewService returns a Service that checks results against rules before storing them.
func NewService(repo Repository, rules scoring.Rules) Service {
	return &service{repo: repo, rules: rules}
}

func (s *service) Record(ctx context.Context, event MatchCompletedEvent) error {
	if err := s.validate(event); err != nil {
		return err
	}
	return s.repo.SaveMatch(ctx, event)
}

func (s *service) validate(e MatchCompletedEvent) error {
	switch {
	case e.EventID == "" || e.MatchID == "":
		return fmt.Errorf("%w: event and match IDs are required", ErrInvalidEvent)
	case !e.Winner.Valid():
		return fmt.Errorf("%w: winner %q", ErrInvalidEvent, e.Winner)
	case len(e.TeamA) != 2 || len(e.TeamB) != 2:
		return fmt.Errorf("%w: both teams need two players", ErrInvalidEvent)
	case len(e.Games) == 0 || len(e.Games) > s.rules.MaxGames:
		return fmt.Errorf("%w: %d games", ErrInvalidEvent, len(e.Games))
	case e.DurationSeconds < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidEvent)
	}

	wins := map[scoring.Side]int{}
	for i, g := range e.Games {
		w, ok := s.rules.GameWinner(g)
		if !ok {
			return fmt.Errorf("%w: game %d (%d-%d) is not finished", ErrInvalidEvent, i+1, g.A, g.B)
		}
		wins[w]++
	}
	if wins[e.Winner] != s.rules.GamesToWin || wins[e.Winner.Opponent()] >= s.rules.GamesToWin {
		return fmt.Errorf("%w: games do not support winner %s", ErrInvalidEvent, e.Winner)
	}
	return nil
}

func (s *service) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.repo.RecentMatches(ctx, limit)
}

func (s *service) PlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	if playerID == "" {
		return nil, errors.New("player_id is required")
	}
	return s.repo.GetPlayerStats(ctx, playerID)
}
