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

package perf

import (
	"sync"

	"github.com/streamnative/chaintable/common/collection"
)

// guardedMap serializes every operation on a single table. A resize touches
// all the buckets, so there is no finer grained locking.
type guardedMap struct {
	sync.Mutex
	m *collection.Map[string, []byte]
}

type tableStats struct {
	size     int
	capacity int
	resizes  int
}

func newGuardedMap(capacity int) *guardedMap {
	return &guardedMap{
		m: collection.NewMap[string, []byte](capacity),
	}
}

func (g *guardedMap) set(key string, value []byte) error {
	g.Lock()
	defer g.Unlock()
	return g.m.Set(key, value)
}

func (g *guardedMap) get(key string) ([]byte, bool, error) {
	g.Lock()
	defer g.Unlock()
	return g.m.Get(key)
}

func (g *guardedMap) stats() tableStats {
	g.Lock()
	defer g.Unlock()
	return tableStats{
		size:     g.m.Len(),
		capacity: g.m.Capacity(),
		resizes:  g.m.Resizes(),
	}
}
