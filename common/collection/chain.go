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

type node[E any] struct {
	value E
	next  *node[E]
}

// Chain is a singly linked list that only grows at the tail. It holds the
// entries of one hash bucket.
//
// Traversal order is always insertion order, and removing an element keeps
// the relative order of the remaining ones. A Chain never fails: positions
// outside of [0, Len()) are treated as no-ops.
type Chain[E any] struct {
	head *node[E]
	tail *node[E]
	size int
}

func NewChain[E any]() *Chain[E] {
	return &Chain[E]{}
}

// Append adds e after the current tail.
func (c *Chain[E]) Append(e E) {
	n := &node[E]{value: e}
	if c.head == nil {
		c.head = n
	} else {
		c.tail.next = n
	}
	c.tail = n
	c.size++
}

// RemoveAt unlinks the element at the zero-based position pos and returns it.
// The second return value is false when pos is out of range.
func (c *Chain[E]) RemoveAt(pos int) (removed E, ok bool) {
	if pos < 0 || pos >= c.size {
		return removed, false
	}

	if pos == 0 {
		n := c.head
		c.head = n.next
		if c.head == nil {
			c.tail = nil
		}
		c.size--
		return n.value, true
	}

	prev := c.head
	for i := 0; i < pos-1; i++ {
		prev = prev.next
	}

	n := prev.next
	prev.next = n.next
	if n == c.tail {
		c.tail = prev
	}
	c.size--
	return n.value, true
}

// Search scans the chain from head to tail and stops at the first element
// accepted by match. It returns the position of that element and a pointer
// to the copy held by the chain, which the caller may update in place.
//
// When nothing matches, it returns (-1, nil, false).
func (c *Chain[E]) Search(match func(e E, pos int) bool) (pos int, e *E, found bool) {
	pos = 0
	for n := c.head; n != nil; n = n.next {
		if match(n.value, pos) {
			return pos, &n.value, true
		}
		pos++
	}
	return -1, nil, false
}

// All yields the position and value of every element, head first.
func (c *Chain[E]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		pos := 0
		for n := c.head; n != nil; n = n.next {
			if !yield(pos, n.value) {
				return
			}
			pos++
		}
	}
}

func (c *Chain[E]) Len() int {
	return c.size
}
