package orderedmap

import (
	"iter"
)

// Map is a key/value map that remembers the order in which keys were first
// inserted.
//
// Setting an existing key replaces its value in place, keeping the original
// position.
type Map[K comparable, V any] struct {
	index  map[K]int
	keys   []K
	values []V
}

// New creates an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		index: map[K]int{},
	}
}

// Set inserts the given key at the end of the map, or overwrites its value
// if the key is already present.
func (m *Map[K, V]) Set(key K, value V) {
	if idx, ok := m.index[key]; ok {
		m.values[idx] = value
		return
	}

	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Get returns the value associated with the given key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	idx, ok := m.index[key]
	if !ok {
		var zero V
		return zero, false
	}

	return m.values[idx], true
}

func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.index[key]
	return ok
}

// Delete removes the given key, shifting the following entries.
func (m *Map[K, V]) Delete(key K) {
	idx, ok := m.index[key]
	if !ok {
		return
	}

	m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
	m.values = append(m.values[:idx], m.values[idx+1:]...)
	delete(m.index, key)

	for i := idx; i < len(m.keys); i++ {
		m.index[m.keys[i]] = i
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// All iterates over the entries in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for idx, key := range m.keys {
			if !yield(key, m.values[idx]) {
				return
			}
		}
	}
}
