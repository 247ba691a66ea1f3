package ratelimiter

import (
	"sync"
	"time"
)

// bucket implements a token bucket
type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

func (b *bucket) allow(now time.Time, rate, capacity float64) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * rate
		if b.tokens > capacity {
			b.tokens = capacity
		}
		b.lastRefill = now
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// KeyedRateLimiter keeps one token bucket per key (client IP for posting).
// Buckets idle longer than expiration are dropped on the next sweep.
type KeyedRateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64
	capacity   float64
	expiration time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// New creates a limiter that refills rate tokens per second up to capacity.
func New(rate float64, capacity int, expiration time.Duration) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   float64(capacity),
		expiration: expiration,
		now:        time.Now,
	}
}

// Allow reports whether a request for key may proceed and consumes a token if so.
func (l *KeyedRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}
	return b.allow(now, l.rate, l.capacity)
}

// Len returns the number of tracked keys.
func (l *KeyedRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// caller holds l.mu
func (l *KeyedRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.expiration {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.expiration {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
