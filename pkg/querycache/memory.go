package querycache

import (
	"sync"
	"time"
)

// MemoryStore is the in-process Store used by client sessions. A single mutex
// guards entries, staleness marks, and the pending-refresh registry, so every
// operation is atomic with respect to interleaved coordinators.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	stale   map[string]struct{}
	pending map[string]func()
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		stale:   make(map[string]struct{}),
		pending: make(map[string]func()),
	}
}

func (s *MemoryStore) Get(key Key) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (s *MemoryStore) Set(key Key, value Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.String()] = Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	delete(s.stale, key.String())
}

func (s *MemoryStore) Entries(prefix Key) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, e := range s.entries {
		if e.Key.HasPrefix(prefix) {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemoryStore) SetMany(prefix Key, update UpdateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !e.Key.HasPrefix(prefix) {
			continue
		}
		if next := update(e.Key, e.Value); next != nil {
			s.entries[k] = Entry{Key: e.Key, Value: next, UpdatedAt: time.Now()}
		}
	}
}

func (s *MemoryStore) Invalidate(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		for k, e := range s.entries {
			if e.Key.HasPrefix(key) {
				s.stale[k] = struct{}{}
			}
		}
		// Mark the group itself so future entries under it refetch too.
		s.stale[key.String()] = struct{}{}
	}
}

// Stale reports whether key has been invalidated since its last write.
func (s *MemoryStore) Stale(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stale[key.String()]
	return ok
}

func (s *MemoryStore) TrackPending(key Key, cancel func()) {
	s.mu.Lock()
	prev := s.pending[key.String()]
	s.pending[key.String()] = cancel
	s.mu.Unlock()
	if prev != nil {
		prev()
	}
}

func (s *MemoryStore) CancelPending(keys ...Key) {
	s.mu.Lock()
	var cancels []func()
	for _, key := range keys {
		for k, cancel := range s.pending {
			if NewKey(splitKey(k)...).HasPrefix(key) {
				cancels = append(cancels, cancel)
				delete(s.pending, k)
			}
		}
	}
	s.mu.Unlock()
	// Run cancels outside the lock; they may re-enter the store.
	for _, cancel := range cancels {
		cancel()
	}
}
