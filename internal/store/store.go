// Package store holds bounded, insertion-ordered collections of entities.
package store

import "sync"

// Entity is any record with a stable unique identifier.
type Entity interface {
	EntityID() string
}

// Store is an insertion-ordered collection of entities keyed by id.
// Eviction always removes the oldest entries first; reads do not refresh position.
type Store[T Entity] struct {
	mu    sync.RWMutex
	items []T
	index map[string]struct{}
}

// New creates an empty store.
func New[T Entity]() *Store[T] {
	return &Store[T]{index: make(map[string]struct{})}
}

// Append inserts entity at the end of the sequence.
// An entity whose id is already present replaces the earlier record and moves
// to the end, so the most recent version wins and ids stay unique.
func (s *Store[T]) Append(entity T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.EntityID()
	if _, ok := s.index[id]; ok {
		s.removeLocked(id)
	}
	s.items = append(s.items, entity)
	s.index[id] = struct{}{}
}

// EnforceCapacity trims the oldest entries until at most limit remain and
// returns how many were evicted.
func (s *Store[T]) EnforceCapacity(limit int) int {
	if limit < 0 {
		limit = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	excess := len(s.items) - limit
	if excess <= 0 {
		return 0
	}
	for _, e := range s.items[:excess] {
		delete(s.index, e.EntityID())
	}
	// Copy so the evicted prefix is not retained by the backing array.
	s.items = append([]T(nil), s.items[excess:]...)
	return excess
}

// GetAll returns a copy of the current sequence in insertion order.
func (s *Store[T]) GetAll() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the entity with the given id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.index[id]; ok {
		for _, e := range s.items {
			if e.EntityID() == id {
				return e, true
			}
		}
	}
	var zero T
	return zero, false
}

// Count returns the current number of entities.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset clears the store.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.index = make(map[string]struct{})
}

func (s *Store[T]) removeLocked(id string) {
	for i, e := range s.items {
		if e.EntityID() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	delete(s.index, id)
}
