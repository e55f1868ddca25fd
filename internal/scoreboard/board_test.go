package scoreboard

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheildo/courtside/internal/session"
)

func TestConfig_Keys(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, "courtside:match:m-1", cfg.matchKey("m-1"))
	assert.Equal(t, "courtside:live", cfg.liveKey())
	assert.Equal(t, 6*time.Hour, cfg.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Retention)

	cfg = Config{KeyPrefix: "club7", TTL: time.Minute}.withDefaults()
	assert.Equal(t, "club7:live", cfg.liveKey())
	assert.Equal(t, time.Minute, cfg.TTL)
}

// newRedisBoard connects to the Redis named by COURTSIDE_TEST_REDIS_ADDR.
func newRedisBoard(t *testing.T) Board {
	t.Helper()
	addr := os.Getenv("COURTSIDE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COURTSIDE_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })

	prefix := "courtside-test-" + uuid.NewString()
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := rdb.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	})
	return NewBoard(rdb, Config{KeyPrefix: prefix, TTL: time.Minute, Retention: time.Minute})
}

func TestRedisBoard_PublishLifecycle(t *testing.T) {
	board := newRedisBoard(t)
	ctx := context.Background()

	stored, err := board.Publish(ctx, session.View{MatchID: "m1", Phase: session.PhaseLive, Version: 2})
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = board.Publish(ctx, session.View{MatchID: "m1", Phase: session.PhaseLive, Version: 1})
	require.NoError(t, err)
	assert.False(t, stored, "older versions are ignored")

	v, err := board.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Version)

	live, err := board.LiveMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "m1", live[0].MatchID)

	board.SessionClosed(ctx, "m1")
	live, err = board.LiveMatches(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, live)

	v, err = board.Get(ctx, "m1")
	require.NoError(t, err, "final state stays readable")
	assert.Equal(t, "m1", v.MatchID)

	_, err = board.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
