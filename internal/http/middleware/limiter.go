package middleware

import (
	"context"
	"sync"
	"time"
)

// RateLimitPolicy allows Limit requests per key within any Window.
type RateLimitPolicy struct {
	Limit  int
	Window time.Duration
}

// NewPolicy returns a policy with non-positive values replaced by
// one request per minute.
func NewPolicy(limit int, window time.Duration) RateLimitPolicy {
	return RateLimitPolicy{Limit: limit, Window: window}.normalized()
}

func (p RateLimitPolicy) normalized() RateLimitPolicy {
	if p.Limit <= 0 {
		p.Limit = 1
	}
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	return p
}

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Limiter decides whether one more request for key fits the policy.
type Limiter interface {
	Allow(ctx context.Context, key string, policy RateLimitPolicy) (Decision, error)
}

// MemoryLimiter keeps a sliding log of admitted requests per key. It is
// only correct for a single replica.
type MemoryLimiter struct {
	mu        sync.Mutex
	logs      map[string][]time.Time
	now       func() time.Time
	nextSweep time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{logs: make(map[string][]time.Time), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, policy RateLimitPolicy) (Decision, error) {
	policy = policy.normalized()
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		l.sweep(now, policy.Window)
		l.nextSweep = now.Add(policy.Window)
	}

	hits := trimBefore(l.logs[key], now.Add(-policy.Window))
	if len(hits) >= policy.Limit {
		l.logs[key] = hits
		wait := hits[0].Add(policy.Window).Sub(now)
		if wait < time.Second {
			wait = time.Second
		}
		return Decision{RetryAfter: wait, ResetAt: now.Add(wait)}, nil
	}

	hits = append(hits, now)
	l.logs[key] = hits
	return Decision{
		Allowed:   true,
		Remaining: policy.Limit - len(hits),
		ResetAt:   hits[0].Add(policy.Window),
	}, nil
}

// sweep drops keys whose newest hit is older than window.
func (l *MemoryLimiter) sweep(now time.Time, window time.Duration) {
	for key, hits := range l.logs {
		if len(hits) == 0 || now.Sub(hits[len(hits)-1]) > window {
			delete(l.logs, key)
		}
	}
}

func trimBefore(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
