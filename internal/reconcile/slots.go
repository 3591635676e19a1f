// Package reconcile keeps an ordered list of owned values in step with an
// ordered list of keys, matching them by position.
package reconcile

import (
	"errors"
	"fmt"
)

// Hooks are invoked by Sync. Destroy may be nil.
type Hooks[K comparable, V any] struct {
	// Create builds the value for a new trailing slot.
	Create func(j int, key K) (V, error)
	// Update is called when the key at an existing slot changed.
	Update func(j int, value V, key K) error
	// Destroy tears down a popped slot.
	Destroy func(j int, value V)
}

// Result counts the work done by one Sync.
type Result struct {
	Created int
	Updated int
	Removed int
}

// Changed reports whether Sync did anything.
func (r Result) Changed() bool {
	return r.Created > 0 || r.Updated > 0 || r.Removed > 0
}

type slot[K comparable, V any] struct {
	key   K
	value V
}

// Slots is a positional collection. Slots are never matched by identity:
// shrinking always pops from the end.
type Slots[K comparable, V any] struct {
	items []slot[K, V]
}

// Len returns the number of slots.
func (s *Slots[K, V]) Len() int {
	return len(s.items)
}

// Values returns the stored values in slot order.
func (s *Slots[K, V]) Values() []V {
	out := make([]V, len(s.items))
	for i, it := range s.items {
		out[i] = it.value
	}
	return out
}

// Keys returns the stored keys in slot order.
func (s *Slots[K, V]) Keys() []K {
	out := make([]K, len(s.items))
	for i, it := range s.items {
		out[i] = it.key
	}
	return out
}

// Sync aligns the slots with keys. Surplus slots are popped from the end,
// last first. Slots past the previous length are created in order. A slot
// whose stored key differs from keys[j] is updated in place and takes the
// new key. Equal keys cause no hook calls, so calling Sync twice with the
// same keys does nothing the second time.
//
// A failing Create stops the pass; slots created so far are kept. Update
// errors are collected and the pass continues.
func (s *Slots[K, V]) Sync(keys []K, h Hooks[K, V]) (Result, error) {
	var res Result

	for len(s.items) > len(keys) {
		s.pop(h.Destroy)
		res.Removed++
	}

	var errs []error
	for j, key := range keys {
		if j == len(s.items) {
			v, err := h.Create(j, key)
			if err != nil {
				errs = append(errs, fmt.Errorf("create slot %d: %w", j, err))
				return res, errors.Join(errs...)
			}
			s.items = append(s.items, slot[K, V]{key: key, value: v})
			res.Created++
			continue
		}
		if s.items[j].key == key {
			continue
		}
		if h.Update != nil {
			if err := h.Update(j, s.items[j].value, key); err != nil {
				errs = append(errs, fmt.Errorf("update slot %d: %w", j, err))
			}
		}
		s.items[j].key = key
		res.Updated++
	}
	return res, errors.Join(errs...)
}

// Clear pops every slot, last first.
func (s *Slots[K, V]) Clear(destroy func(j int, value V)) int {
	n := len(s.items)
	for len(s.items) > 0 {
		s.pop(destroy)
	}
	return n
}

func (s *Slots[K, V]) pop(destroy func(int, V)) {
	j := len(s.items) - 1
	it := s.items[j]
	var zero slot[K, V]
	s.items[j] = zero
	s.items = s.items[:j]
	if destroy != nil {
		destroy(j, it.value)
	}
}
