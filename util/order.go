package util

import (
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"
)

// OrderedMap is a map supporting iteration ordered by the key. Inserting a
// key twice is an error, so name-keyed tables catch duplicates on the way in.
type OrderedMap[K constraints.Ordered, V any] struct {
	data map[K]V
}

// OrderedMapEntry is an accessor into a single (key, value) pair of the map.
type OrderedMapEntry[K constraints.Ordered, V any] struct {
	Key   K
	Value V
}

// DuplicateKeyError is returned when inserting a key that already exists.
type DuplicateKeyError[K constraints.Ordered] struct {
	Key K
}

func (e DuplicateKeyError[K]) Error() string {
	return fmt.Sprintf("duplicate key %v", e.Key)
}

// Instantiates an empty OrderedMap object.
func NewOrderedMap[K constraints.Ordered, V any]() OrderedMap[K, V] {
	return OrderedMap[K, V]{data: map[K]V{}}
}

// Instantiates a new OrderedMap from a given conventional map
// by shallow-copying both the keys and the values.
func NewOrderedMapFrom[K constraints.Ordered, V any](raw map[K]V) OrderedMap[K, V] {
	result := OrderedMap[K, V]{data: make(map[K]V, len(raw))}
	for k, v := range raw {
		result.data[k] = v
	}
	return result
}

// Insert a (key, value) pair.
func (m *OrderedMap[K, V]) Insert(key K, value V) error {
	if m.data == nil {
		m.data = map[K]V{}
	}
	if _, ok := m.data[key]; ok {
		return DuplicateKeyError[K]{Key: key}
	}
	m.data[key] = value
	return nil
}

// Performs a lookup of the key, similar to `v, ok := m[k]`.
func (m *OrderedMap[K, V]) Lookup(key K) (V, bool) {
	val, ok := m.data[key]
	return val, ok
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.data)
}

// Returns the list of entries ordered by keys.
func (m *OrderedMap[K, V]) Entries() []OrderedMapEntry[K, V] {
	keys := m.Keys()

	result := make([]OrderedMapEntry[K, V], 0, len(m.data))
	for _, k := range keys {
		result = append(result, OrderedMapEntry[K, V]{
			Key:   k,
			Value: m.data[k],
		})
	}
	return result
}

// Returns the ordered list of map keys.
func (m *OrderedMap[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Returns the ordered copy of the provided slice, ordering is done using the key function.
// Elements with equal keys keep their relative order.
func SliceOrderedBy[V any, K constraints.Ordered](values []V, key func(v *V) K) []V {
	result := make([]V, len(values))
	copy(result, values)
	sort.SliceStable(result, func(i, j int) bool { return key(&result[i]) < key(&result[j]) })
	return result
}

// Convenience function, returning the list of ordered keys of the input map.
func OrderedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	tmp := NewOrderedMapFrom(m)
	return tmp.Keys()
}
