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

package ordset

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// A Coarse is an ordered set guarded by a single read-write lock for
// the entire structure. Mutations are fully serialized; lookups may
// share the read side of the lock. Each operation linearizes at the
// point its lock is granted.
//
// A Coarse is internally synchronized and is safe for concurrent use.
// It should not be copied after it has been created. Critical sections
// perform only link manipulation and comparisons of ordered values and
// cannot panic, so a Coarse never becomes unusable.
type Coarse[T constraints.Ordered] struct {
	mu struct {
		sync.RWMutex
		head *node[T]
		size int
	}
}

var _ Set[int] = (*Coarse[int])(nil)

// NewCoarse constructs an empty [Coarse] set.
func NewCoarse[T constraints.Ordered]() *Coarse[T] {
	s := &Coarse[T]{}
	s.mu.head = newList[T]()
	return s
}

// Add inserts elem, returning true if it was absent and is now
// present.
func (s *Coarse[T]) Add(elem T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pred, curr := s.find(elem)
	if curr.compare(elem) == 0 {
		return false
	}
	pred.next = &node[T]{kind: kindElem, elem: elem, next: curr}
	s.mu.size++
	return true
}

// Remove deletes elem, returning true if it was present and is now
// absent.
func (s *Coarse[T]) Remove(elem T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pred, curr := s.find(elem)
	if curr.compare(elem) != 0 {
		return false
	}
	pred.next = curr.next
	s.mu.size--
	return true
}

// Contains reports whether elem is present. It holds only the read
// side of the lock, so lookups never block each other.
func (s *Coarse[T]) Contains(elem T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	curr := s.mu.head.next
	for curr.compare(elem) < 0 {
		curr = curr.next
	}
	return curr.compare(elem) == 0
}

// Len returns the number of elements in the set.
func (s *Coarse[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mu.size
}

// find returns the first node whose order key is >= elem, along with
// its predecessor. The caller must hold the write lock.
func (s *Coarse[T]) find(elem T) (pred, curr *node[T]) {
	pred = s.mu.head
	curr = pred.next
	for curr.compare(elem) < 0 {
		pred = curr
		curr = curr.next
	}
	return pred, curr
}
