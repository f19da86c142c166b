// Copyright 2025 The Keystone Authors
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
//
// SPDX-License-Identifier: Apache-2.0

package hashmap

import "slices"

// An entry is a key-value pair plus the key's hash code, cached so
// that resizing never re-invokes the hasher.
type entry[K comparable, V any] struct {
	key  K
	hash uint64
	val  V
}

// A bucket is the short entry vector backing one table slot, kept
// sorted by hash code. Keys are unique within a bucket. Buckets are
// not internally synchronized; the owning map's lock discipline
// guards them.
type bucket[K comparable, V any] []entry[K, V]

// find locates key within the bucket. When found, it returns the
// entry's index and true; otherwise it returns the index at which an
// entry with this hash should be inserted, and false.
func (b bucket[K, V]) find(hash uint64, key K) (int, bool) {
	i, _ := slices.BinarySearchFunc(b, hash, func(e entry[K, V], h uint64) int {
		switch {
		case e.hash < h:
			return -1
		case e.hash > h:
			return 1
		default:
			return 0
		}
	})
	// Scan the run of equal hash codes for the key itself.
	for ; i < len(b) && b[i].hash == hash; i++ {
		if b[i].key == key {
			return i, true
		}
	}
	return i, false
}

// get returns the value associated with key, if present.
func (b bucket[K, V]) get(hash uint64, key K) (V, bool) {
	if i, ok := b.find(hash, key); ok {
		return b[i].val, true
	}
	var zero V
	return zero, false
}

// put inserts or replaces the entry for e.key, returning the previous
// value and true if the key was already present.
func (b *bucket[K, V]) put(e entry[K, V]) (V, bool) {
	i, ok := b.find(e.hash, e.key)
	if ok {
		prev := (*b)[i].val
		(*b)[i].val = e.val
		return prev, true
	}
	*b = slices.Insert(*b, i, e)
	var zero V
	return zero, false
}

// remove deletes the entry for key, returning its value and true if
// it was present.
func (b *bucket[K, V]) remove(hash uint64, key K) (V, bool) {
	i, ok := b.find(hash, key)
	if !ok {
		var zero V
		return zero, false
	}
	prev := (*b)[i].val
	*b = slices.Delete(*b, i, i+1)
	return prev, true
}
