package view

import (
	"sort"
	"sync"
)

// Store is the in-memory map of collection name to template records. It is
// pure storage: no merging, rendering, or role logic lives here.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]*Template
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]*Template),
	}
}

// Ensure creates the named bucket when absent. Existing templates are never
// reset by a repeated call.
func (s *Store) Ensure(plural string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[plural]; !ok {
		s.collections[plural] = make(map[string]*Template)
	}
}

// Set stores a record under the named bucket, creating the bucket if needed.
func (s *Store) Set(plural, key string, record *Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.collections[plural]
	if !ok {
		bucket = make(map[string]*Template)
		s.collections[plural] = bucket
	}
	bucket[key] = record
}

// Get returns the stored record or nil.
func (s *Store) Get(plural, key string) *Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections[plural][key]
}

// Has reports whether the bucket exists.
func (s *Store) Has(plural string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[plural]
	return ok
}

// All returns a shallow copy of the named bucket. Mutating the returned map
// does not affect the store; the records themselves are shared.
func (s *Store) All(plural string) map[string]*Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.collections[plural]
	if !ok {
		return nil
	}
	out := make(map[string]*Template, len(bucket))
	for key, record := range bucket {
		out[key] = record
	}
	return out
}

// Keys returns the sorted template keys of the named bucket.
func (s *Store) Keys(plural string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.collections[plural]
	keys := make([]string, 0, len(bucket))
	for key := range bucket {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
