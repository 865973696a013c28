// Package auth keeps bearer sessions for logged-in users.
package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sessionPrefix = "session:"

type RedisSessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisSessionStore(client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "RedisSessionStore").Logger(),
	}
}

// Create issues a fresh opaque token for the user.
func (s *RedisSessionStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionPrefix+token, userID, s.ttl).Err(); err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Int64("user_id", userID).Msg("session create failed")
		return "", err
	}
	return token, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (int64, bool, error) {
	val, err := s.client.Get(ctx, sessionPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Msg("session lookup failed")
		return 0, false, err
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionPrefix+token).Err()
}

type memorySession struct {
	userID  int64
	expires time.Time
}

// MemorySessionStore is used when redis is disabled.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, sessions: make(map[string]memorySession), now: time.Now}
}

func (s *MemorySessionStore) Create(_ context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = memorySession{userID: userID, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *MemorySessionStore) Get(_ context.Context, token string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, false, nil
	}
	if !s.now().Before(sess.expires) {
		delete(s.sessions, token)
		return 0, false, nil
	}
	return sess.userID, true, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
