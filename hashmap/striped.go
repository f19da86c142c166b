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
	"sync/atomic"
)

// A Striped is a hash map whose buckets are guarded by a fixed bank of
// locks. The stripe of bucket i is i mod S, where S is the stripe
// count chosen at construction; S never changes for the life of the
// map, while the bucket count doubles as the table grows.
//
// Both S and the bucket count are powers of two with S <= buckets, so
// S divides the bucket count and a key's stripe, hash mod S, equals
// its bucket index mod S no matter how often the table has been
// resized. A single-bucket operation therefore locks its stripe
// knowing nothing about the current bucket count.
//
// Resize acquires every stripe in ascending index order. Single-stripe
// operations take one lock from that same total order, so no cycle of
// waiters can form. While a resize holds the full bank, no operation
// can run, so no operation can observe a partially-migrated table.
//
// A Striped is internally synchronized and is safe for concurrent use.
// It should not be copied after it has been created. The hasher runs
// before any lock is taken and no other user code runs inside a
// critical section, so a Striped never becomes unusable.
type Striped[K comparable, V any] struct {
	hasher     Hasher[K]
	loadFactor float64
	stripes    []sync.Mutex // fixed; the bank never grows or shrinks

	// buckets is replaced wholesale by resize, which holds every
	// stripe. Readers always hold at least one stripe, which the
	// last resize also held, so the field is never read and written
	// concurrently.
	buckets []bucket[K, V]
	size    atomic.Int64
}

var _ Map[string, int] = (*Striped[string, int])(nil)

// NewStriped constructs an empty [Striped] map that hashes keys with
// hasher.
func NewStriped[K comparable, V any](hasher Hasher[K], opts ...Option) (*Striped[K, V], error) {
	if hasher == nil {
		return nil, fmt.Errorf("%w: nil hasher", ErrInvalidArg)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	stripes := nextPow2(cfg.stripeCount)
	buckets := nextPow2(cfg.bucketCount)
	if buckets < stripes {
		// Every stripe must own at least one bucket.
		buckets = stripes
	}
	return &Striped[K, V]{
		hasher:     hasher,
		loadFactor: cfg.loadFactor,
		stripes:    make([]sync.Mutex, stripes),
		buckets:    make([]bucket[K, V], buckets),
	}, nil
}

// Put associates value with key, returning the previous value and
// true if the key was already present. If the insertion pushes the
// load factor over its threshold, the table is resized after the
// stripe lock is released.
func (m *Striped[K, V]) Put(key K, value V) (V, bool) {
	hash := m.hasher(key)
	lock := m.lockFor(hash)
	lock.Lock()

	b := &m.buckets[hash&uint64(len(m.buckets)-1)]
	prev, replaced := b.put(entry[K, V]{key: key, hash: hash, val: value})
	var overloaded bool
	if !replaced {
		overloaded = float64(m.size.Add(1)) > m.loadFactor*float64(len(m.buckets))
	}
	lock.Unlock()

	if overloaded {
		m.resize()
	}
	return prev, replaced
}

// Get returns the value associated with key and true if the key is
// present. Only the key's stripe is locked.
func (m *Striped[K, V]) Get(key K) (V, bool) {
	hash := m.hasher(key)
	lock := m.lockFor(hash)
	lock.Lock()
	defer lock.Unlock()
	return m.buckets[hash&uint64(len(m.buckets)-1)].get(hash, key)
}

// Remove deletes key, returning its value and true if it was present.
func (m *Striped[K, V]) Remove(key K) (V, bool) {
	hash := m.hasher(key)
	lock := m.lockFor(hash)
	lock.Lock()
	defer lock.Unlock()

	prev, removed := m.buckets[hash&uint64(len(m.buckets)-1)].remove(hash, key)
	if removed {
		m.size.Add(-1)
	}
	return prev, removed
}

// Contains reports whether key is present.
func (m *Striped[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries in the map.
func (m *Striped[K, V]) Len() int {
	return int(m.size.Load())
}

// lockFor returns the stripe lock owning the bucket that hash maps
// to, under any past or future bucket count.
func (m *Striped[K, V]) lockFor(hash uint64) *sync.Mutex {
	return &m.stripes[hash&uint64(len(m.stripes)-1)]
}

// resize doubles the bucket count. It acquires every stripe in
// ascending index order and re-checks the load factor under the full
// bank: of two racing resizers, the loser observes the winner's work
// and backs off instead of doubling again.
func (m *Striped[K, V]) resize() {
	for i := range m.stripes {
		m.stripes[i].Lock()
	}
	defer func() {
		for i := range m.stripes {
			m.stripes[i].Unlock()
		}
	}()

	if float64(m.size.Load()) <= m.loadFactor*float64(len(m.buckets)) {
		return
	}

	next := make([]bucket[K, V], 2*len(m.buckets))
	mask := uint64(len(next) - 1)
	for _, b := range m.buckets {
		for _, e := range b {
			// An old bucket splits across exactly two new buckets, so
			// appending preserves each new bucket's hash order.
			nb := &next[e.hash&mask]
			*nb = append(*nb, e)
		}
	}
	m.buckets = next
}
