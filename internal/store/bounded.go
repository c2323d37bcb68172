package store

import "sync"

// Bounded is a Store that enforces a fixed capacity after every append.
type Bounded[T Entity] struct {
	// mu serializes Add so append and trim are observed as one mutation.
	mu       sync.Mutex
	store    *Store[T]
	capacity int
}

// NewBounded creates a store holding at most capacity entities.
func NewBounded[T Entity](capacity int) *Bounded[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Bounded[T]{store: New[T](), capacity: capacity}
}

// Add appends entity and evicts the oldest entries beyond capacity.
// It returns the number of evicted entities.
func (b *Bounded[T]) Add(entity T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store.Append(entity)
	return b.store.EnforceCapacity(b.capacity)
}

// All returns the entities in insertion order.
func (b *Bounded[T]) All() []T {
	return b.store.GetAll()
}

// Get returns the entity with the given id.
func (b *Bounded[T]) Get(id string) (T, bool) {
	return b.store.Get(id)
}

// Len returns the number of held entities.
func (b *Bounded[T]) Len() int {
	return b.store.Count()
}

// Cap returns the capacity.
func (b *Bounded[T]) Cap() int {
	return b.capacity
}

// Reset clears all entities.
func (b *Bounded[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store.Reset()
}
