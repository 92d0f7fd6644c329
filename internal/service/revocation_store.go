package service

import (
	"container/heap"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// RevocationStore remembers access tokens that must be rejected before they
// expire on their own.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// InMemoryRevocationStore keeps revocations for a single replica. Expired
// entries are evicted on every Revoke in expiry order, so the map holds at
// most the tokens revoked within one access token lifetime.
type InMemoryRevocationStore struct {
	mu      sync.RWMutex
	store   map[string]time.Time
	expires expiryHeap
	now     func() time.Time
}

func NewInMemoryRevocationStore() *InMemoryRevocationStore {
	return &InMemoryRevocationStore{
		store: make(map[string]time.Time),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryRevocationStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 || token == "" {
		return nil
	}
	now := s.now()
	key := tokenDigest(token)
	exp := now.Add(ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired(now)
	s.store[key] = exp
	heap.Push(&s.expires, expiryEntry{key: key, at: exp})
	return nil
}

func (s *InMemoryRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	expiresAt, ok := s.store[tokenDigest(token)]
	s.mu.RUnlock()
	return ok && s.now().Before(expiresAt), nil
}

// Len reports the number of tracked revocations, expired ones included
// until the next Revoke evicts them.
func (s *InMemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

// evictExpired pops heap entries that are due. A key revoked again with a
// later expiry keeps its map entry because the popped time no longer matches.
func (s *InMemoryRevocationStore) evictExpired(now time.Time) {
	for s.expires.Len() > 0 && !now.Before(s.expires[0].at) {
		e := heap.Pop(&s.expires).(expiryEntry)
		if cur, ok := s.store[e.key]; ok && cur.Equal(e.at) {
			delete(s.store, e.key)
		}
	}
}

type expiryEntry struct {
	key string
	at  time.Time
}

type expiryHeap []expiryEntry

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x any)        { *h = append(*h, x.(expiryEntry)) }
func (h *expiryHeap) Pop() any {
	old := *h
	e := old[len(old)-1]
	*h = old[:len(old)-1]
	return e
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
