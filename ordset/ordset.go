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
Package ordset contains thread-safe ordered sets backed by sorted
linked lists.

Two implementations are provided, differing only in locking strategy:

  - [Coarse] serializes every operation behind a single read-write
    lock. It is the simplest possible correct implementation and a
    good default when contention is low.
  - [Fine] gives every list node its own lock and traverses
    hand-over-hand, so operations on disjoint regions of the list
    proceed in parallel.

Both implementations expose the same contract:

	set := ordset.NewFine[int]()
	set.Add(42)      // true: 42 was absent
	set.Add(42)      // false: already present
	set.Contains(42) // true
	set.Remove(42)   // true: 42 was present

Every set is internally synchronized and safe for concurrent use. A
set handle may be shared freely across goroutines; the zero value is
not usable, construct with [NewCoarse] or [NewFine].
*/
package ordset

import "golang.org/x/exp/constraints"

// A Set is a collection of unique, totally-ordered elements. All
// methods are safe for concurrent use and linearizable.
type Set[T constraints.Ordered] interface {
	// Add inserts elem, returning true if it was absent and is now
	// present.
	Add(elem T) bool
	// Remove deletes elem, returning true if it was present and is
	// now absent.
	Remove(elem T) bool
	// Contains reports whether elem is present.
	Contains(elem T) bool
	// Len returns the number of elements in the set.
	Len() int
}
