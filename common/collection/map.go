// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collection

import "iter"

// Map is a hash map with separate chaining.
//
// Keys are hashed through their string representation and compared with ==.
// Every operation that needs a bucket index may return ErrIndexOutOfRange;
// a missing key is never an error.
//
// A Map is not safe for concurrent use.
type Map[K comparable, V any] struct {
	table[K, V]
}

// NewMap creates a map with the given initial number of buckets.
func NewMap[K comparable, V any](capacity int) *Map[K, V] {
	return &Map[K, V]{
		table: newTable[K, V](capacity),
	}
}

// Set associates value with key, replacing any previous value.
func (m *Map[K, V]) Set(key K, value V) error {
	return m.put(key, value, true)
}

// Get returns the value stored for key. found is false when the key is absent.
func (m *Map[K, V]) Get(key K) (value V, found bool, err error) {
	e, err := m.lookup(key)
	if err != nil || e == nil {
		return value, false, err
	}
	return e.Value, true, nil
}

// Has reports whether key is present, whatever its value.
func (m *Map[K, V]) Has(key K) (bool, error) {
	e, err := m.lookup(key)
	return e != nil, err
}

// Remove deletes key and returns the entry that was stored for it.
func (m *Map[K, V]) Remove(key K) (removed Entry[K, V], found bool, err error) {
	return m.remove(key)
}

func (m *Map[K, V]) Values() []V {
	values := make([]V, 0, m.size)
	for e := range m.all() {
		values = append(values, e.Value)
	}
	return values
}

func (m *Map[K, V]) Entries() []Entry[K, V] {
	return m.entries()
}

// All iterates over the map in the same order as Keys. The map must not be
// modified while iterating.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for e := range m.all() {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Bucket returns a copy of the chain at index i, in insertion order.
func (m *Map[K, V]) Bucket(i int) []Entry[K, V] {
	return m.bucket(i)
}

func (m *Map[K, V]) String() string {
	return m.format(Entry[K, V].String)
}
