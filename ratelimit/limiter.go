// Package ratelimit caps inbound webhook volume per client.
//
// Two implementations share the Limiter interface: an in-process token
// bucket for single-instance deployments, and a Redis-backed fixed
// window for deployments running multiple bridge replicas.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a request from the given client key may
// proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// TokenBucket implements per-key token bucket rate limiting in memory.
type TokenBucket struct {
	rate    float64 // tokens per second, also the burst size
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// NewTokenBucket creates an in-memory limiter admitting perSecond
// requests per second per client key.
func NewTokenBucket(perSecond int) *TokenBucket {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &TokenBucket{
		rate:    float64(perSecond),
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether a request under key may proceed. It never
// returns an error.
func (l *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.rate, lastFill: time.Now()} // start full
		l.buckets[key] = b
	}
	l.refill(b)

	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}
	return false, nil
}

// Reset clears the rate limit state for a client key.
func (l *TokenBucket) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

func (l *TokenBucket) refill(b *bucket) {
	now := time.Now()
	elapsed := now.Sub(b.lastFill).Seconds()
	b.tokens += elapsed * l.rate
	if b.tokens > l.rate {
		b.tokens = l.rate // cap at burst size = rate
	}
	b.lastFill = now
}
