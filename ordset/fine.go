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
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// A Fine is an ordered set in which every list node carries its own
// lock. Traversal couples adjacent locks hand-over-hand: the next
// node's lock is acquired before the previous one is released, so at
// most two locks are held at a time and a node is never inspected
// without a lock protecting it. Locks are only ever acquired in list
// order, which is monotonic by order key, so deadlock is structurally
// impossible.
//
// Operations on disjoint regions of the list proceed in parallel. A
// mutation linearizes when its link redirection becomes visible, which
// happens while both affected nodes are locked; a removed node cannot
// be unlinked while any traversal is resting on its lock.
//
// A Fine is internally synchronized and is safe for concurrent use.
// It should not be copied after it has been created. Critical sections
// perform only link manipulation and comparisons of ordered values and
// cannot panic, so a Fine never becomes unusable.
type Fine[T constraints.Ordered] struct {
	head *node[T]
	size atomic.Int64
}

var _ Set[int] = (*Fine[int])(nil)

// NewFine constructs an empty [Fine] set.
func NewFine[T constraints.Ordered]() *Fine[T] {
	return &Fine[T]{head: newList[T]()}
}

// Add inserts elem, returning true if it was absent and is now
// present.
func (s *Fine[T]) Add(elem T) bool {
	pred, curr := s.find(elem)
	defer pred.mu.Unlock()
	defer curr.mu.Unlock()

	if curr.compare(elem) == 0 {
		return false
	}
	// Link the new node while both neighbors remain locked.
	pred.next = &node[T]{kind: kindElem, elem: elem, next: curr}
	s.size.Add(1)
	return true
}

// Remove deletes elem, returning true if it was present and is now
// absent. Removal is physical: the node is unlinked immediately under
// the coupled locks. No traversal can be resting on the victim,
// because reaching it would require the predecessor's lock, which this
// operation holds.
func (s *Fine[T]) Remove(elem T) bool {
	pred, curr := s.find(elem)
	defer pred.mu.Unlock()
	defer curr.mu.Unlock()

	if curr.compare(elem) != 0 {
		return false
	}
	pred.next = curr.next
	s.size.Add(-1)
	return true
}

// Contains reports whether elem is present.
func (s *Fine[T]) Contains(elem T) bool {
	pred, curr := s.find(elem)
	defer pred.mu.Unlock()
	defer curr.mu.Unlock()

	return curr.compare(elem) == 0
}

// Len returns the number of elements in the set.
func (s *Fine[T]) Len() int {
	return int(s.size.Load())
}

// find couple-traverses to the first node whose order key is >= elem
// and returns it with its predecessor. Both returned nodes are locked;
// the caller must unlock them.
func (s *Fine[T]) find(elem T) (pred, curr *node[T]) {
	pred = s.head
	pred.mu.Lock()
	curr = pred.next
	curr.mu.Lock()
	for curr.compare(elem) < 0 {
		pred.mu.Unlock()
		pred = curr
		curr = curr.next
		curr.mu.Lock()
	}
	return pred, curr
}
