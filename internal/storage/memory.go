package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// FaultFunc lets tests fail a specific store call; op is "put" or "delete".
type FaultFunc func(op, key string) error

type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	fault   FaultFunc
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (s *MemoryStore) SetFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *MemoryStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if err := s.injected("put", key); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if err := s.injected("delete", key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) URL(_ context.Context, key string) (string, error) {
	return "memory://" + key, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStore) injected(op, key string) error {
	s.mu.RLock()
	fault := s.fault
	s.mu.RUnlock()
	if fault == nil {
		return nil
	}
	return fault(op, key)
}
