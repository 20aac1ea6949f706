package kvcache

import (
	"sync"
	"time"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a process-local domain.KVStore with lazy expiry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get returns the value for key, expiring it lazily when the TTL has passed.
func (s *MemoryStore) Get(_ domain.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key for ttl. A non-positive ttl never expires.
func (s *MemoryStore) Set(_ domain.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: exp}
	return nil
}
