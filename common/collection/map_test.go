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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	m := NewMap[string, int](10)

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 10, m.Capacity())

	assert.NoError(t, m.Set("one", 1))
	val, found, err := m.Get("one")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, val)

	// test repeat set
	assert.NoError(t, m.Set("one", 10))
	val, found, err = m.Get("one")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 10, val)
	assert.Equal(t, 1, m.Len())

	assert.NoError(t, m.Set("two", 2))
	assert.NoError(t, m.Set("three", 3))
	assert.Equal(t, 3, m.Len())

	assert.ElementsMatch(t, []string{"one", "two", "three"}, m.Keys())
	assert.ElementsMatch(t, []int{10, 2, 3}, m.Values())
	assert.ElementsMatch(t, []Entry[string, int]{{"one", 10}, {"two", 2}, {"three", 3}}, m.Entries())

	removed, found, err := m.Remove("two")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Entry[string, int]{"two", 2}, removed)
	_, found, err = m.Get("two")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, m.Len())

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, "{}", m.String())

	assert.NoError(t, m.Set("four", 4))
	assert.Equal(t, "{four: 4}", m.String())
}

func TestMap_MissingKey(t *testing.T) {
	m := NewMap[string, string](4)

	val, found, err := m.Get("missing")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "", val)

	has, err := m.Has("missing")
	assert.NoError(t, err)
	assert.False(t, has)

	removed, found, err := m.Remove("missing")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Entry[string, string]{}, removed)
}

func TestMap_HasZeroValue(t *testing.T) {
	ints := NewMap[string, int](4)
	require.NoError(t, ints.Set("zero", 0))
	has, err := ints.Has("zero")
	assert.NoError(t, err)
	assert.True(t, has)

	strs := NewMap[int, string](4)
	require.NoError(t, strs.Set(0, ""))
	has, err = strs.Has(0)
	assert.NoError(t, err)
	assert.True(t, has)

	ptrs := NewMap[string, *int](4)
	require.NoError(t, ptrs.Set("nil", nil))
	has, err = ptrs.Has("nil")
	assert.NoError(t, err)
	assert.True(t, has)
}

func TestMap_RemoveIsIdempotent(t *testing.T) {
	m := NewMap[string, int](10)
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Set(fmt.Sprintf("key%d", i), i))
	}

	_, found, err := m.Remove("key3")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4, m.Len())

	_, found, err = m.Remove("key3")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 4, m.Len())
}

func TestMap_Scenario(t *testing.T) {
	m := NewMap[string, int](10)
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Set(fmt.Sprintf("key%d", i), i))
	}
	assert.Equal(t, 100, m.Len())
	assert.Greater(t, m.Capacity(), 10)
	assert.Greater(t, m.Resizes(), 0)

	val, found, err := m.Get("key54")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 54, val)

	val, found, err = m.Get("key99")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 99, val)

	_, found, err = m.Remove("key99")
	assert.NoError(t, err)
	assert.True(t, found)

	has, err := m.Has("key99")
	assert.NoError(t, err)
	assert.False(t, has)
	assert.Equal(t, 99, m.Len())

	assert.Len(t, m.Keys(), 99)
	assert.Len(t, m.Values(), 99)
	assert.Len(t, m.Entries(), 99)

	m.Clear()
	assert.Empty(t, m.Keys())
	assert.Empty(t, m.Values())
	assert.Empty(t, m.Entries())
	assert.Equal(t, 0, m.Len())

	_, found, err = m.Get("Hey")
	assert.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set("Hey", 1))
	assert.Equal(t, 1, m.Len())
}

func TestMap_Growth(t *testing.T) {
	m := NewMap[int, int](10)

	// 8/10 is the first ratio above 0.75, then 16/20, 31/40 and 61/80
	for _, test := range []struct {
		entries  int
		capacity int
	}{
		{7, 10},
		{8, 20},
		{15, 20},
		{16, 40},
		{30, 40},
		{31, 80},
		{60, 80},
		{61, 160},
		{100, 160},
	} {
		for m.Len() < test.entries {
			require.NoError(t, m.Set(m.Len(), m.Len()))
		}
		assert.Equal(t, test.capacity, m.Capacity(), "entries: %d", test.entries)
	}
	assert.Equal(t, 4, m.Resizes())

	// Updates never add entries
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Set(i, -i))
	}
	assert.Equal(t, 100, m.Len())
	assert.Equal(t, 160, m.Capacity())
}

func TestMap_ResizeKeepsEntries(t *testing.T) {
	m := NewMap[string, int](2)
	expected := map[string]int{}

	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("k-%d", i)
		capacity := m.Capacity()
		require.NoError(t, m.Set(key, i))
		expected[key] = i

		if m.Capacity() != capacity {
			for k, v := range expected {
				val, found, err := m.Get(k)
				require.NoError(t, err)
				require.True(t, found, k)
				require.Equal(t, v, val)
			}
		}
	}

	actual := map[string]int{}
	for k, v := range m.All() {
		actual[k] = v
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("unexpected content (-want +got):\n%s", diff)
	}
}

func TestMap_ClearKeepsCapacity(t *testing.T) {
	m := NewMap[int, string](4)
	for i := 0; i < 20; i++ {
		require.NoError(t, m.Set(i, fmt.Sprint(i)))
	}
	capacity := m.Capacity()
	assert.Greater(t, capacity, 4)

	m.Clear()
	assert.Equal(t, capacity, m.Capacity())
	for i := 0; i < capacity; i++ {
		assert.Nil(t, m.Bucket(i))
	}
}

func TestMap_SnapshotOrder(t *testing.T) {
	m := NewMap[string, int](8)
	for i := 0; i < 6; i++ {
		require.NoError(t, m.Set(fmt.Sprintf("key%d", i), i))
	}

	var expected []Entry[string, int]
	for i := 0; i < m.Capacity(); i++ {
		expected = append(expected, m.Bucket(i)...)
	}
	assert.Equal(t, expected, m.Entries())

	keys := make([]string, len(expected))
	for i, e := range expected {
		keys[i] = e.Key
	}
	assert.Equal(t, keys, m.Keys())
}

func TestMap_Buckets(t *testing.T) {
	m := NewMap[string, int](16)
	for _, key := range []string{"foo", "bar", "baz"} {
		require.NoError(t, m.Set(key, len(key)))
	}

	// The same keys have fixed positions in TestBucketIndex
	for key, index := range map[string]int{"foo": 10, "bar": 2, "baz": 5} {
		i, err := m.IndexOf(key)
		assert.NoError(t, err)
		assert.Equal(t, index, i)
		assert.Equal(t, []Entry[string, int]{{key, 3}}, m.Bucket(i))
	}

	assert.Nil(t, m.Bucket(0))
	assert.Nil(t, m.Bucket(-1))
	assert.Nil(t, m.Bucket(16))

	// Emptied buckets do not show up in the snapshots
	_, _, err := m.Remove("foo")
	assert.NoError(t, err)
	assert.Empty(t, m.Bucket(10))
	assert.ElementsMatch(t, []string{"bar", "baz"}, m.Keys())
}

func TestMap_Collisions(t *testing.T) {
	m := NewMap[string, int](1)
	m.index = func(string, int) int { return 0 }

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Set(fmt.Sprint(i), i))
	}
	assert.Equal(t, []Entry[string, int]{{"0", 0}, {"1", 1}, {"2", 2}, {"3", 3}, {"4", 4}}, m.Bucket(0))

	_, found, err := m.Remove("2")
	assert.NoError(t, err)
	assert.True(t, found)
	_, found, err = m.Remove("4")
	assert.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, m.Set("5", 5))
	require.NoError(t, m.Set("0", 100))

	assert.Equal(t, []Entry[string, int]{{"0", 100}, {"1", 1}, {"3", 3}, {"5", 5}}, m.Bucket(0))
	assert.Equal(t, 4, m.Len())
}

func TestMap_IndexOutOfRange(t *testing.T) {
	m := NewMap[string, int](4)
	require.NoError(t, m.Set("a", 1))

	m.index = func(_ string, buckets int) int { return buckets }

	_, err := m.IndexOf("a")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.ErrorIs(t, m.Set("b", 2), ErrIndexOutOfRange)

	_, _, err = m.Get("a")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = m.Has("a")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, err = m.Remove("a")
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Equal(t, 1, m.Len())

	m.index = func(string, int) int { return -1 }
	_, err = m.IndexOf("a")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMap_FailedResizeKeepsBuckets(t *testing.T) {
	m := NewMap[int, int](4)
	m.index = func(_ string, buckets int) int {
		if buckets > 4 {
			return buckets
		}
		return 0
	}

	require.NoError(t, m.Set(1, 1))
	require.NoError(t, m.Set(2, 2))
	require.NoError(t, m.Set(3, 3))

	// The fourth entry triggers a resize which cannot place anything
	assert.ErrorIs(t, m.Set(4, 4), ErrIndexOutOfRange)
	assert.Equal(t, 4, m.Capacity())
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, 0, m.Resizes())
	assert.Equal(t, []Entry[int, int]{{1, 1}, {2, 2}, {3, 3}, {4, 4}}, m.Bucket(0))
}

func TestMap_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewMap[string, int](0).Capacity())
	assert.Equal(t, DefaultCapacity, NewMap[string, int](-3).Capacity())
	assert.Equal(t, 1, NewMap[string, int](1).Capacity())
}

func TestMap_AllStopsEarly(t *testing.T) {
	m := NewMap[int, int](16)
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Set(i, i))
	}

	count := 0
	for range m.All() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestSortedKeys(t *testing.T) {
	m := NewMap[string, int](4)
	for _, k := range []string{"c", "a", "d", "b"} {
		require.NoError(t, m.Set(k, 0))
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, SortedKeys[string](m))
}
