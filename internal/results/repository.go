package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/cheildo/courtside/internal/scoring"
)

var (
	ErrDuplicateEvent = errors.New("match result already recorded")
	ErrPlayerNotFound = errors.New("player not found")
)

// MatchRecord is a stored match result.
type MatchRecord struct {
	MatchID         string              `json:"matchID"`
	Winner          scoring.Side        `json:"winner"`
	Games           []scoring.GameScore `json:"games"`
	TeamA           []string            `json:"teamA"`
	TeamB           []string            `json:"teamB"`
	DurationSeconds int                 `json:"durationSeconds"`
	CompletedAt     time.Time           `json:"completedAt"`
}

// PlayerStats are the per-player counters updated on every recorded match.
type PlayerStats struct {
	PlayerID  string `json:"playerID"`
	Name      string `json:"name"`
	PlayCount int    `json:"playCount"`
	Wins      int    `json:"wins"`
}

// Repository defines the database operations for match results.
type Repository interface {
	SaveMatch(ctx context.Context, event MatchCompletedEvent) error
	RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error)
	GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error)
}

type postgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// SaveMatch stores the match, its games and the players' play counts in one transaction.
// A second delivery of the same event or match returns ErrDuplicateEvent.
func (r *postgresRepository) SaveMatch(ctx context.Context, event MatchCompletedEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO matches (id, event_id, winner, team_a, team_b, duration_seconds, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING;`,
		event.MatchID, event.EventID, string(event.Winner),
		pq.Array(playerIDs(event.TeamA)), pq.Array(playerIDs(event.TeamB)),
		event.DurationSeconds, event.CompletedAt,
	)
	if err != nil {
		slog.Error("Failed to insert match", "matchID", event.MatchID, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrDuplicateEvent
	}

	for i, g := range event.Games {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO match_games (match_id, game_number, points_a, points_b)
			VALUES ($1, $2, $3, $4);`,
			event.MatchID, i+1, g.A, g.B,
		)
		if err != nil {
			slog.Error("Failed to insert game", "matchID", event.MatchID, "game", i+1, "error", err)
			return err
		}
	}

	for _, side := range []scoring.Side{scoring.SideA, scoring.SideB} {
		won := 0
		if side == event.Winner {
			won = 1
		}
		for _, p := range event.Team(side) {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO players (id, name, play_count, wins, updated_at)
				VALUES ($1, $2, 1, $3, now())
				ON CONFLICT (id) DO UPDATE
				SET name = EXCLUDED.name,
				    play_count = players.play_count + 1,
				    wins = players.wins + EXCLUDED.wins,
				    updated_at = now();`,
				p.ID, p.Name, won,
			)
			if err != nil {
				slog.Error("Failed to update player stats", "playerID", p.ID, "error", err)
				return err
			}
		}
	}

	return tx.Commit()
}

// RecentMatches returns the latest results, newest first.
func (r *postgresRepository) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	query := `
		SELECT m.id, m.winner, m.team_a, m.team_b, m.duration_seconds, m.completed_at,
		       COALESCE(
		           json_agg(json_build_object('A', g.points_a, 'B', g.points_b) ORDER BY g.game_number)
		               FILTER (WHERE g.match_id IS NOT NULL),
		           '[]'
		       )
		FROM matches m
		LEFT JOIN match_games g ON g.match_id = m.id
		GROUP BY m.id
		ORDER BY m.completed_at DESC
		LIMIT $1;
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Error("Failed to query recent matches", "error", err)
		return nil, err
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var (
			rec    MatchRecord
			winner string
			games  []byte
		)
		if err := rows.Scan(
			&rec.MatchID, &winner, pq.Array(&rec.TeamA), pq.Array(&rec.TeamB),
			&rec.DurationSeconds, &rec.CompletedAt, &games,
		); err != nil {
			return nil, err
		}
		rec.Winner = scoring.Side(winner)
		if err := json.Unmarshal(games, &rec.Games); err != nil {
			return nil, fmt.Errorf("decode games for match %s: %w", rec.MatchID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetPlayerStats retrieves the counters for a single player.
func (r *postgresRepository) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	query := `
		SELECT id, name, play_count, wins
		FROM players
		WHERE id = $1;
	`
	var ps PlayerStats
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&ps.PlayerID, &ps.Name, &ps.PlayCount, &ps.Wins)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		slog.Error("Failed to get player stats from database", "error", err)
		return nil, err
	}
	return &ps, nil
}
