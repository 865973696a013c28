package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// deletes the key only while it still carries the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements the lock on SET NX PX.
type RedisLocker struct {
	client redis.Cmdable
	prefix string
	logger zerolog.Logger
}

func NewRedisLocker(client redis.Cmdable, prefix string, logger zerolog.Logger) *RedisLocker {
	logger = logger.With().Str("component", "RedisLocker").Logger()
	return &RedisLocker{client: client, prefix: prefix, logger: logger}
}

// Acquire reports false without error when another owner holds the key.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	lease := Lease{Key: l.prefix + key, Token: uuid.NewString(), TTL: ttl}

	ok, err := l.client.SetNX(ctx, lease.Key, lease.Token, ttl).Result()
	if err != nil {
		l.logger.Error().Ctx(ctx).Err(err).Str("key", lease.Key).Msg("lock acquire failed")
		return Lease{}, false, err
	}
	if !ok {
		l.logger.Debug().Ctx(ctx).Str("key", lease.Key).Msg("lock held by another owner")
		return Lease{}, false, nil
	}
	return lease, true, nil
}

// Release is a no-op when the lease has expired or was taken over.
func (l *RedisLocker) Release(ctx context.Context, lease Lease) error {
	n, err := releaseScript.Run(ctx, l.client, []string{lease.Key}, lease.Token).Int()
	if err != nil {
		l.logger.Error().Ctx(ctx).Err(err).Str("key", lease.Key).Msg("lock release failed")
		return err
	}
	if n == 0 {
		l.logger.Warn().Ctx(ctx).Str("key", lease.Key).Msg("lock expired before release")
	}
	return nil
}
