// Package collection implements the indexed container of children keyed
// by Discriminator that every Space uses to hold its subspaces and its
// processes. A Collection is typed per-variant (Collection[*Space],
// Collection[*Process]) rather than storing a dynamically dispatched
// interface — the component tree has exactly two closed variants, so a
// generic container beats an interface-based one.
package collection

import (
	"sync"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

// Collection is a mutex-guarded map from Discriminator to T, preserving
// no particular iteration order beyond Go's usual map guarantees.
type Collection[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
}

type entry[T any] struct {
	discrim discrim.Discriminator
	value   T
}

// New returns an empty Collection.
func New[T any]() *Collection[T] {
	return &Collection[T]{items: make(map[string]entry[T])}
}

// Insert adds value under d, overwriting any existing entry for d.
func (c *Collection[T]) Insert(d discrim.Discriminator, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[d.String()] = entry[T]{discrim: d.Clone(), value: value}
}

// Get looks up the value stored under d.
func (c *Collection[T]) Get(d discrim.Discriminator) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[d.String()]
	return e.value, ok
}

// Remove deletes d from the collection, returning the removed value if
// present.
func (c *Collection[T]) Remove(d discrim.Discriminator) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := d.String()
	e, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}
	return e.value, ok
}

// Len returns the number of items currently stored.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Each calls fn for every (discriminator, value) pair. fn must not call
// back into the Collection — Each holds the read lock for its duration.
func (c *Collection[T]) Each(fn func(discrim.Discriminator, T)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.items {
		fn(e.discrim, e.value)
	}
}

// Discriminators returns a snapshot of every key currently stored.
func (c *Collection[T]) Discriminators() []discrim.Discriminator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]discrim.Discriminator, 0, len(c.items))
	for _, e := range c.items {
		out = append(out, e.discrim)
	}
	return out
}
