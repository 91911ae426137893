package hsmx

import "sync"

// Store provides thread-safe storage for extended state shared by the
// callbacks of a machine. Readers outside the dispatch goroutine may use it
// concurrently.
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]any),
	}
}

// Get retrieves a value by key. Returns nil if the key does not exist.
func (s *Store) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// Lookup retrieves a value and reports whether it was present.
func (s *Store) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores a value by key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes a key from the store.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// GetAll returns a snapshot copy of all data.
// The returned map is a copy and modifications will not affect the store.
func (s *Store) GetAll() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]any, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	return snapshot
}

// LoadAll atomically replaces all data in the store.
func (s *Store) LoadAll(data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]any, len(data))
	for k, v := range data {
		s.data[k] = v
	}
}

// Int returns the int stored under key, or def when absent or of another type.
func (s *Store) Int(key string, def int) int {
	if v, ok := s.Get(key).(int); ok {
		return v
	}
	return def
}

// Bool returns the bool stored under key, or false.
func (s *Store) Bool(key string) bool {
	v, _ := s.Get(key).(bool)
	return v
}
