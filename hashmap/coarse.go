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

import (
	"fmt"
	"sync"
)

// A Coarse is a hash map guarded by a single read-write lock for the
// entire table. Mutations, including resizes, are fully serialized;
// lookups may share the read side of the lock. Each operation
// linearizes at the point its lock is granted.
//
// A Coarse is internally synchronized and is safe for concurrent use.
// It should not be copied after it has been created. The hasher runs
// before the lock is taken and no other user code runs inside a
// critical section, so a Coarse never becomes unusable.
type Coarse[K comparable, V any] struct {
	hasher     Hasher[K]
	loadFactor float64

	mu struct {
		sync.RWMutex
		buckets []bucket[K, V]
		size    int
	}
}

var _ Map[string, int] = (*Coarse[string, int])(nil)

// New constructs an empty [Coarse] map that hashes keys with hasher.
func New[K comparable, V any](hasher Hasher[K], opts ...Option) (*Coarse[K, V], error) {
	if hasher == nil {
		return nil, fmt.Errorf("%w: nil hasher", ErrInvalidArg)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	m := &Coarse[K, V]{hasher: hasher, loadFactor: cfg.loadFactor}
	m.mu.buckets = make([]bucket[K, V], nextPow2(cfg.bucketCount))
	return m, nil
}

// Put associates value with key, returning the previous value and
// true if the key was already present.
func (m *Coarse[K, V]) Put(key K, value V) (V, bool) {
	hash := m.hasher(key)
	m.mu.Lock()
	defer m.mu.Unlock()

	b := &m.mu.buckets[hash&uint64(len(m.mu.buckets)-1)]
	prev, replaced := b.put(entry[K, V]{key: key, hash: hash, val: value})
	if !replaced {
		m.mu.size++
		if float64(m.mu.size) > m.loadFactor*float64(len(m.mu.buckets)) {
			m.grow()
		}
	}
	return prev, replaced
}

// Get returns the value associated with key and true if the key is
// present. It holds only the read side of the lock.
func (m *Coarse[K, V]) Get(key K) (V, bool) {
	hash := m.hasher(key)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mu.buckets[hash&uint64(len(m.mu.buckets)-1)].get(hash, key)
}

// Remove deletes key, returning its value and true if it was present.
func (m *Coarse[K, V]) Remove(key K) (V, bool) {
	hash := m.hasher(key)
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, removed := m.mu.buckets[hash&uint64(len(m.mu.buckets)-1)].remove(hash, key)
	if removed {
		m.mu.size--
	}
	return prev, removed
}

// Contains reports whether key is present.
func (m *Coarse[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries in the map.
func (m *Coarse[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mu.size
}

// grow doubles the bucket count and relinks every entry. The caller
// must hold the write lock. Old buckets are discarded only after every
// entry has moved; no partially-migrated table is ever visible.
func (m *Coarse[K, V]) grow() {
	next := make([]bucket[K, V], 2*len(m.mu.buckets))
	mask := uint64(len(next) - 1)
	for _, b := range m.mu.buckets {
		for _, e := range b {
			// An old bucket splits across exactly two new buckets, so
			// appending preserves each new bucket's hash order.
			nb := &next[e.hash&mask]
			*nb = append(*nb, e)
		}
	}
	m.mu.buckets = next
}
