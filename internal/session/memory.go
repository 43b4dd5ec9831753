package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      *Data
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	nowFn   func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore constructs a MemoryStore. A nil nowFn uses time.Now.
func NewMemoryStore(nowFn func() time.Time) *MemoryStore {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MemoryStore{
		nowFn:   nowFn,
		entries: make(map[string]memoryEntry),
	}
}

// Load returns a copy of the stored data or nil when absent or expired.
func (s *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && !s.nowFn().Before(entry.expiresAt) {
		delete(s.entries, id)
		return nil, nil
	}
	return cloneData(entry.data), nil
}

// Save stores a copy of data until ttl elapses. A non-positive ttl never expires.
func (s *MemoryStore) Save(_ context.Context, id string, data *Data, ttl time.Duration) error {
	if id == "" {
		return nil
	}
	now := s.nowFn()
	entry := memoryEntry{data: cloneData(data)}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	s.entries[id] = entry
	return nil
}

// Delete removes id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep drops expired entries. Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	for id, entry := range s.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}
