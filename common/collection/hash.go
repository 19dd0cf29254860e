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

	"github.com/zeebo/xxh3"
)

// keyString returns the representation of a key that gets hashed.
func keyString(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprint(key)
}

// bucketIndex maps a key representation onto [0, buckets). It only depends
// on its arguments, so the same key lands in the same bucket until the
// number of buckets changes.
func bucketIndex(key string, buckets int) int {
	return int(xxh3.HashString(key) % uint64(buckets))
}
