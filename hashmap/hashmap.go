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

/*
Package hashmap contains thread-safe hash maps with configurable
locking granularity.

Two implementations are provided:

  - [Coarse] guards the whole table, including resizes, with one
    read-write lock.
  - [Striped] partitions the table's buckets across a fixed bank of
    locks, so operations on different stripes proceed in parallel.
    Resizing changes the number of buckets but never the number of
    locks.

Keys are hashed by a caller-supplied [Hasher]; stock hashers are
provided for string and integer keys:

	m, err := hashmap.NewStriped[string, int](
		hashmap.StringHasher,
		hashmap.WithStripeCount(8),
	)
	if err != nil { ... }
	prev, ok := m.Put("a", 1) // ok == false: "a" was absent
	v, ok := m.Get("a")       // v == 1, ok == true

Absent keys are reported through the boolean return, never an error.
Every map is internally synchronized and safe for concurrent use; a
handle may be shared freely across goroutines.
*/
package hashmap

import (
	"errors"
	"fmt"
)

// ErrInvalidArg is raised if an invalid argument is passed to a
// constructor or option.
var ErrInvalidArg = errors.New("invalid argument")

// Map is the contract shared by the hash map implementations. All
// methods are safe for concurrent use and linearizable.
type Map[K comparable, V any] interface {
	// Put associates value with key, returning the previous value and
	// true if the key was already present.
	Put(key K, value V) (V, bool)
	// Get returns the value associated with key and true if the key is
	// present.
	Get(key K) (V, bool)
	// Remove deletes key, returning its value and true if it was
	// present.
	Remove(key K) (V, bool)
	// Contains reports whether key is present.
	Contains(key K) bool
	// Len returns the number of entries in the map.
	Len() int
}

const (
	defaultBucketCount = 16
	defaultStripeCount = 8
	defaultLoadFactor  = 4.0
)

type config struct {
	bucketCount int
	stripeCount int
	loadFactor  float64
}

// An Option adjusts the construction of a map.
type Option func(*config) error

// WithBucketCount sets the initial number of buckets. The count is
// rounded up to a power of two. The default is 16.
func WithBucketCount(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: bucket count must be at least 1, got %d", ErrInvalidArg, n)
		}
		c.bucketCount = n
		return nil
	}
}

// WithStripeCount sets the number of locks in a [Striped] map's bank.
// The count is rounded up to a power of two and is fixed for the life
// of the map, even across resizes. The default is 8. [Coarse] maps
// ignore this option.
func WithStripeCount(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: stripe count must be at least 1, got %d", ErrInvalidArg, n)
		}
		c.stripeCount = n
		return nil
	}
}

// WithLoadFactor sets the entries-per-bucket threshold above which the
// table doubles its bucket count. The default is 4.
func WithLoadFactor(f float64) Option {
	return func(c *config) error {
		if f <= 0 {
			return fmt.Errorf("%w: load factor must be positive, got %v", ErrInvalidArg, f)
		}
		c.loadFactor = f
		return nil
	}
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		bucketCount: defaultBucketCount,
		stripeCount: defaultStripeCount,
		loadFactor:  defaultLoadFactor,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
