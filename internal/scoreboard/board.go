package scoreboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cheildo/courtside/internal/session"
)

var ErrNotFound = errors.New("no scoreboard for match")

// Board caches the latest view of every match in Redis so that scoreboards
// can be served without touching the umpire's session.
type Board interface {
	session.Observer
	Publish(ctx context.Context, v session.View) (bool, error)
	Remove(ctx context.Context, matchID string) error
	Get(ctx context.Context, matchID string) (session.View, error)
	LiveMatches(ctx context.Context, limit int64) ([]session.View, error)
}

// Config controls key naming and expiry.
type Config struct {
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	Retention time.Duration `mapstructure:"retention"`
}

func (c Config) withDefaults() Config {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "courtside"
	}
	if c.TTL <= 0 {
		c.TTL = 6 * time.Hour
	}
	if c.Retention <= 0 {
		c.Retention = 15 * time.Minute
	}
	return c
}

func (c Config) matchKey(matchID string) string {
	return c.KeyPrefix + ":match:" + matchID
}

func (c Config) liveKey() string {
	return c.KeyPrefix + ":live"
}

// publishScript stores a view only if it is not older than the stored one,
// refreshes the expiry and keeps the live-court index in step with the phase.
//
// KEYS[1] match hash, KEYS[2] live sorted set.
// ARGV: version, state, ttl seconds, live flag, score, matchID.
var publishScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], 'version') or '-1')
if tonumber(ARGV[1]) < current then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'state', ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[3])
if ARGV[4] == '1' then
	redis.call('ZADD', KEYS[2], 'NX', ARGV[5], ARGV[6])
else
	redis.call('ZREM', KEYS[2], ARGV[6])
end
return 1
`)

type redisBoard struct {
	rdb redis.UniversalClient
	cfg Config
	now func() time.Time
}

func NewBoard(rdb redis.UniversalClient, cfg Config) Board {
	return &redisBoard{
		rdb: rdb,
		cfg: cfg.withDefaults(),
		now: time.Now,
	}
}

// Publish stores v and reports whether it replaced the cached view.
// Live matches are indexed by the time they first appeared so the oldest court lists first.
func (b *redisBoard) Publish(ctx context.Context, v session.View) (bool, error) {
	state, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode view: %w", err)
	}

	live := "0"
	if v.Phase == session.PhaseLive {
		live = "1"
	}
	keys := []string{b.cfg.matchKey(v.MatchID), b.cfg.liveKey()}
	stored, err := publishScript.Run(ctx, b.rdb, keys,
		v.Version, state, int64(b.cfg.TTL/time.Second), live, b.now().Unix(), v.MatchID,
	).Int()
	if err != nil {
		slog.Error("Failed to publish scoreboard", "matchID", v.MatchID, "error", err)
		return false, err
	}
	return stored == 1, nil
}

// Remove takes a match off the live index. Its last view stays readable for the retention period.
func (b *redisBoard) Remove(ctx context.Context, matchID string) error {
	_, err := b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, b.cfg.liveKey(), matchID)
		pipe.Expire(ctx, b.cfg.matchKey(matchID), b.cfg.Retention)
		return nil
	})
	if err != nil {
		slog.Error("Failed to remove match from scoreboard", "matchID", matchID, "error", err)
		return err
	}
	slog.Info("Match removed from live scoreboard", "matchID", matchID)
	return nil
}

func (b *redisBoard) Get(ctx context.Context, matchID string) (session.View, error) {
	state, err := b.rdb.HGet(ctx, b.cfg.matchKey(matchID), "state").Bytes()
	if errors.Is(err, redis.Nil) {
		return session.View{}, ErrNotFound
	}
	if err != nil {
		return session.View{}, err
	}
	return decodeView(state)
}

// LiveMatches returns up to limit live courts, longest running first.
// Index entries whose state has expired are pruned on the way.
func (b *redisBoard) LiveMatches(ctx context.Context, limit int64) ([]session.View, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := b.rdb.ZRange(ctx, b.cfg.liveKey(), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []session.View{}, nil
	}

	cmds := make([]*redis.StringCmd, len(ids))
	_, err = b.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGet(ctx, b.cfg.matchKey(id), "state")
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	views := make([]session.View, 0, len(ids))
	var stale []interface{}
	for i, cmd := range cmds {
		state, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			stale = append(stale, ids[i])
			continue
		}
		if err != nil {
			return nil, err
		}
		v, err := decodeView(state)
		if err != nil {
			slog.Warn("Skipping unreadable scoreboard entry", "matchID", ids[i], "error", err)
			continue
		}
		views = append(views, v)
	}

	if len(stale) > 0 {
		if err := b.rdb.ZRem(ctx, b.cfg.liveKey(), stale...).Err(); err != nil {
			slog.Warn("Failed to prune expired live matches", "count", len(stale), "error", err)
		}
	}
	return views, nil
}

// SessionUpdated mirrors every session change into the cache.
func (b *redisBoard) SessionUpdated(ctx context.Context, v session.View) {
	b.Publish(ctx, v)
}

func (b *redisBoard) SessionClosed(ctx context.Context, matchID string) {
	b.Remove(ctx, matchID)
}

func decodeView(state []byte) (session.View, error) {
	var v session.View
	if err := json.Unmarshal(state, &v); err != nil {
		return session.View{}, fmt.Errorf("decode view: %w", err)
	}
	return v, nil
}
