package cache

import (
	"sync"
	"time"
)

// Entry is a stored value together with the time it was written.
// Consumers receive it by value and must treat the contents as immutable.
type Entry[T any] struct {
	Value    T
	StoredAt time.Time
}

// Age returns how long ago the entry was written.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Store maps string keys to timestamped entries. Writes replace the prior
// entry for a key (last-write-wins, no merge). Safe for concurrent use.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
	now     func() time.Time
}

// NewStore creates an empty store. One instance is owned by the pipeline;
// tests get isolation by constructing their own.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[string]Entry[T]),
		now:     time.Now,
	}
}

// Set stores value under key, replacing any previous entry.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	s.entries[key] = Entry[T]{Value: value, StoredAt: s.now()}
	s.mu.Unlock()
}

// Get returns the entry for key regardless of its age.
func (s *Store[T]) Get(key string) (Entry[T], bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	return e, ok
}

// Fresh reports whether key holds an entry younger than ttl.
func (s *Store[T]) Fresh(key string, ttl time.Duration) bool {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return e.Age(s.now()) < ttl
}

// SetClock overrides the time source. Test hook.
func (s *Store[T]) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}
