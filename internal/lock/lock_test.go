//go:build unit

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error)
	Release(ctx context.Context, lease Lease) error
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, "lock:", zerolog.Nop()), mr
}

func lockers(t *testing.T) map[string]locker {
	r, _ := newRedisLocker(t)
	return map[string]locker{
		"redis":  r,
		"memory": NewMemoryLocker(),
	}
}

func TestAcquireRelease(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			lease, ok, err := l.Acquire(ctx, "sub:1", time.Minute)
			require.NoError(t, err)
			require.True(t, ok)
			assert.NotEmpty(t, lease.Token)

			_, ok, err = l.Acquire(ctx, "sub:1", time.Minute)
			require.NoError(t, err)
			assert.False(t, ok, "second acquire must fail while held")

			_, ok, err = l.Acquire(ctx, "sub:2", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok, "other keys are independent")

			require.NoError(t, l.Release(ctx, lease))

			_, ok, err = l.Acquire(ctx, "sub:1", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestReleaseWithForeignToken(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			lease, ok, err := l.Acquire(ctx, "sub:7", time.Minute)
			require.NoError(t, err)
			require.True(t, ok)

			require.NoError(t, l.Release(ctx, Lease{Key: lease.Key, Token: "not-mine"}))

			_, ok, err = l.Acquire(ctx, "sub:7", time.Minute)
			require.NoError(t, err)
			assert.False(t, ok, "foreign release must not free the lock")
		})
	}
}

func TestRedisLockExpires(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	lease, ok, err := l.Acquire(ctx, "sub:3", 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(3 * time.Second)

	_, ok, err = l.Acquire(ctx, "sub:3", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// the stale lease must not delete the new owner's key
	require.NoError(t, l.Release(ctx, lease))
	assert.True(t, mr.Exists("lock:sub:3"))
}

func TestMemoryLockExpires(t *testing.T) {
	l := NewMemoryLocker()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, _ := l.Acquire(ctx, "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = l.Acquire(ctx, "k", time.Second)
	assert.True(t, ok)
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var wins int32
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, ok, err := l.Acquire(context.Background(), "sub:42", time.Minute)
					if err == nil && ok {
						atomic.AddInt32(&wins, 1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins)
		})
	}
}
