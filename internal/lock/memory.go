package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	token   string
	expires time.Time
}

// MemoryLocker is a process-local lock used when redis is disabled.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: make(map[string]memoryEntry), now: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.entries[key]; ok && now.Before(e.expires) {
		return Lease{}, false, nil
	}

	lease := Lease{Key: key, Token: uuid.NewString(), TTL: ttl}
	l.entries[key] = memoryEntry{token: lease.Token, expires: now.Add(ttl)}
	return lease, true, nil
}

func (l *MemoryLocker) Release(_ context.Context, lease Lease) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[lease.Key]; ok && e.token == lease.Token {
		delete(l.entries, lease.Key)
	}
	return nil
}
