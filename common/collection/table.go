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
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultCapacity is used when a table is created with a capacity lower than 1.
	DefaultCapacity = 16

	// LoadFactor is the ratio of entries to buckets above which the table doubles.
	LoadFactor = 0.75
)

// Entry is a key with its payload, as stored in a bucket chain.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

func (e Entry[K, V]) String() string {
	return fmt.Sprintf("%v: %v", e.Key, e.Value)
}

// table is the separate-chaining engine shared by Map and Set.
//
// A nil bucket has not been allocated yet. It behaves exactly like an empty
// chain. The load factor is checked once per insertion, after the entry has
// been added, and resizing never shrinks the table.
type table[K comparable, V any] struct {
	buckets []*Chain[Entry[K, V]]
	size    int
	resizes int

	index func(key string, buckets int) int
}

func newTable[K comparable, V any](capacity int) table[K, V] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return table[K, V]{
		buckets: make([]*Chain[Entry[K, V]], capacity),
		index:   bucketIndex,
	}
}

// IndexOf returns the bucket that holds, or would hold, key.
func (t *table[K, V]) IndexOf(key K) (int, error) {
	index := t.index(keyString(key), len(t.buckets))
	if index < 0 || index >= len(t.buckets) {
		return -1, errors.Wrapf(ErrIndexOutOfRange, "key %v mapped to %d with %d buckets",
			key, index, len(t.buckets))
	}
	return index, nil
}

// Len returns the number of entries in the table.
func (t *table[K, V]) Len() int {
	return t.size
}

// Capacity returns the current number of buckets.
func (t *table[K, V]) Capacity() int {
	return len(t.buckets)
}

// Resizes returns how many times the table has doubled since it was created.
func (t *table[K, V]) Resizes() int {
	return t.resizes
}

// Clear drops every entry. The number of buckets is preserved.
func (t *table[K, V]) Clear() {
	t.buckets = make([]*Chain[Entry[K, V]], len(t.buckets))
	t.size = 0
}

// Keys returns a snapshot of the keys, ordered by bucket and then by
// insertion order within the bucket.
func (t *table[K, V]) Keys() []K {
	keys := make([]K, 0, t.size)
	for e := range t.all() {
		keys = append(keys, e.Key)
	}
	return keys
}

func (t *table[K, V]) entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, t.size)
	for e := range t.all() {
		entries = append(entries, e)
	}
	return entries
}

func (t *table[K, V]) all() iter.Seq[Entry[K, V]] {
	return func(yield func(Entry[K, V]) bool) {
		for _, bucket := range t.buckets {
			if bucket == nil {
				continue
			}
			for _, e := range bucket.All() {
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (t *table[K, V]) bucket(i int) []Entry[K, V] {
	if i < 0 || i >= len(t.buckets) || t.buckets[i] == nil {
		return nil
	}
	entries := make([]Entry[K, V], 0, t.buckets[i].Len())
	for _, e := range t.buckets[i].All() {
		entries = append(entries, e)
	}
	return entries
}

func matchKey[K comparable, V any](key K) func(Entry[K, V], int) bool {
	return func(e Entry[K, V], _ int) bool {
		return e.Key == key
	}
}

// find locates the entry for key. A missing key is not an error: e is nil
// and index still points at the bucket the key belongs to.
func (t *table[K, V]) find(key K) (index, pos int, e *Entry[K, V], err error) {
	index, err = t.IndexOf(key)
	if err != nil {
		return -1, -1, nil, err
	}

	bucket := t.buckets[index]
	if bucket == nil {
		return index, -1, nil, nil
	}

	pos, e, _ = bucket.Search(matchKey[K, V](key))
	return index, pos, e, nil
}

// put inserts key. If the key is already present its payload is replaced
// when overwrite is set and left untouched otherwise.
func (t *table[K, V]) put(key K, value V, overwrite bool) error {
	index, _, e, err := t.find(key)
	if err != nil {
		return err
	}

	if e != nil {
		if overwrite {
			e.Value = value
		}
	} else {
		t.place(index, Entry[K, V]{Key: key, Value: value})
		t.size++
	}

	if t.overloaded() {
		return t.resize()
	}
	return nil
}

func (t *table[K, V]) lookup(key K) (*Entry[K, V], error) {
	_, _, e, err := t.find(key)
	return e, err
}

func (t *table[K, V]) remove(key K) (removed Entry[K, V], found bool, err error) {
	index, pos, e, err := t.find(key)
	if err != nil || e == nil {
		return removed, false, err
	}

	removed, found = t.buckets[index].RemoveAt(pos)
	if found {
		t.size--
	}
	return removed, found, nil
}

// place appends e to its bucket, allocating the chain on first use. It does
// not check for duplicates nor for the load factor.
func (t *table[K, V]) place(index int, e Entry[K, V]) {
	if t.buckets[index] == nil {
		t.buckets[index] = NewChain[Entry[K, V]]()
	}
	t.buckets[index].Append(e)
}

func (t *table[K, V]) overloaded() bool {
	return float64(t.size)/float64(len(t.buckets)) > LoadFactor
}

// resize doubles the bucket array and re-places every entry, walking the old
// buckets in order. The entry count does not change.
func (t *table[K, V]) resize() error {
	old := t.buckets
	t.buckets = make([]*Chain[Entry[K, V]], 2*len(old))

	for _, bucket := range old {
		if bucket == nil {
			continue
		}
		for _, e := range bucket.All() {
			index, err := t.IndexOf(e.Key)
			if err != nil {
				t.buckets = old
				return err
			}
			t.place(index, e)
		}
	}

	t.resizes++
	slog.Debug(
		"Resized hash table",
		slog.Int("previous-capacity", len(old)),
		slog.Int("capacity", len(t.buckets)),
		slog.Int("size", t.size),
	)
	return nil
}

func (t *table[K, V]) format(entry func(Entry[K, V]) string) string {
	var builder strings.Builder
	builder.WriteString("{")

	first := true
	for e := range t.all() {
		if !first {
			builder.WriteString(", ")
		}
		builder.WriteString(entry(e))
		first = false
	}
	builder.WriteString("}")
	return builder.String()
}
