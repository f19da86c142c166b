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

type nodeKind int8

const (
	kindHead nodeKind = iota
	kindElem
	kindTail
)

// A node is one element of a sorted singly-linked list. The successor
// pointer is owned by the node and may only be read or written under
// the lock discipline of the containing set: the whole-structure lock
// in [Coarse], or the node's own mu in [Fine].
//
// Every list is bounded by a head and a tail sentinel. The sentinels
// are never unlinked, so a traversal never needs a nil check: it stops
// at the tail, whose order key compares greater than every element.
type node[T constraints.Ordered] struct {
	mu   sync.Mutex // used by Fine only
	kind nodeKind
	elem T
	next *node[T]
}

// compare orders n relative to elem. The head sentinel is less than
// every element and the tail sentinel greater, standing in for the
// minimal and maximal order keys, which do not exist as values for
// arbitrary ordered types.
func (n *node[T]) compare(elem T) int {
	switch n.kind {
	case kindHead:
		return -1
	case kindTail:
		return 1
	}
	switch {
	case n.elem < elem:
		return -1
	case n.elem > elem:
		return 1
	default:
		return 0
	}
}

// newList returns the head of an empty sentinel-bounded list.
func newList[T constraints.Ordered]() *node[T] {
	return &node[T]{
		kind: kindHead,
		next: &node[T]{kind: kindTail},
	}
}
