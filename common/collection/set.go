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

import (
	"fmt"
	"iter"
	"sort"

	"golang.org/x/exp/constraints"
)

// Set is the key-only flavour of Map. It shares the same buckets, hashing
// and growth policy.
type Set[K comparable] struct {
	table[K, struct{}]
}

func NewSet[K comparable](capacity int) *Set[K] {
	return &Set[K]{
		table: newTable[K, struct{}](capacity),
	}
}

// NewSetFrom creates a set holding every element of items.
func NewSetFrom[K comparable](capacity int, items []K) (*Set[K], error) {
	s := NewSet[K](capacity)
	for _, k := range items {
		if err := s.Add(k); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts key. Adding a key that is already present does nothing.
func (s *Set[K]) Add(key K) error {
	return s.put(key, struct{}{}, false)
}

func (s *Set[K]) Has(key K) (bool, error) {
	e, err := s.lookup(key)
	return e != nil, err
}

func (s *Set[K]) Remove(key K) (removed Entry[K, struct{}], found bool, err error) {
	return s.remove(key)
}

func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for e := range s.all() {
			if !yield(e.Key) {
				return
			}
		}
	}
}

// Bucket returns the keys chained at index i, in insertion order.
func (s *Set[K]) Bucket(i int) []K {
	entries := s.bucket(i)
	if entries == nil {
		return nil
	}
	keys := make([]K, len(entries))
	for j, e := range entries {
		keys[j] = e.Key
	}
	return keys
}

// Complement Return a new Set which is the complement of the `current` set with `other`
// eg: `res = current - other`
func (s *Set[K]) Complement(other *Set[K]) (*Set[K], error) {
	res := NewSet[K](s.Capacity())
	for k := range s.All() {
		found, err := other.Has(k)
		if err != nil {
			return nil, err
		}
		if !found {
			if err := res.Add(k); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

func (s *Set[K]) String() string {
	return s.format(func(e Entry[K, struct{}]) string {
		return fmt.Sprint(e.Key)
	})
}

// SortedKeys returns the keys of a Map or Set in ascending order. The key
// type has to be given explicitly, eg: `SortedKeys[string](m)`.
func SortedKeys[K constraints.Ordered](c interface{ Keys() []K }) []K {
	r := c.Keys()
	sort.SliceStable(r, func(i, j int) bool {
		return r[i] < r[j]
	})
	return r
}
