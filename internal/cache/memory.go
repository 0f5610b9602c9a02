package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default in-process Store. Entries expire lazily on Get
// and can be swept explicitly.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is swappable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory coordinate cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the entry for key if present and not expired.
func (s *MemoryStore) Get(_ context.Context, key Key) (Entry, bool, error) {
	s.mu.RLock()
	me, ok := s.entries[key.String()]
	s.mu.RUnlock()

	if !ok {
		return Entry{}, false, nil
	}
	if s.now().After(me.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key.String())
		s.mu.Unlock()
		return Entry{}, false, nil
	}
	return me.entry, true, nil
}

// Set stores an entry under key with the given TTL (DefaultTTL when <= 0).
func (s *MemoryStore) Set(_ context.Context, key Key, entry Entry, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	s.entries[key.String()] = memoryEntry{entry: entry, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Sweep removes all expired entries and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, me := range s.entries {
		if now.After(me.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
