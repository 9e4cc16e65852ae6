package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter counts hits per key inside fixed windows.
type Limiter interface {
	// Allow records one hit for key under the given policy. When the hit
	// exceeds the limit it returns false and the time until the window resets.
	Allow(ctx context.Context, key string, policy Policy) (bool, time.Duration, error)
}

type bucket struct {
	count   int
	resetAt time.Time
}

// InMemory is a process-local fixed-window limiter.
type InMemory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewInMemory creates an empty in-memory limiter.
func NewInMemory() *InMemory {
	return &InMemory{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *InMemory) Allow(_ context.Context, key string, policy Policy) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	id := key + "|" + policy.String()
	b, ok := l.buckets[id]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{resetAt: now.Add(policy.Window)}
		l.buckets[id] = b
		l.sweep(now)
	}

	b.count++
	if b.count > policy.Limit {
		return false, b.resetAt.Sub(now), nil
	}
	return true, 0, nil
}

// sweep drops expired buckets so idle keys do not accumulate.
func (l *InMemory) sweep(now time.Time) {
	for id, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, id)
		}
	}
}
