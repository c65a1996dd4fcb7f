package ratelimiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript bumps the window counter and arms its expiry in one round trip,
// so concurrent claimers across processes observe a single shared window.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisStore implements Store on a shared Redis instance.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore -.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (rs *RedisStore) key(key string) string {
	return rs.prefix + ":rl:" + key
}

// Incr -.
func (rs *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return incrScript.Run(ctx, rs.client, []string{rs.key(key)}, window.Milliseconds()).Int64()
}

// Reset -.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	return rs.client.Del(ctx, rs.key(key)).Err()
}
