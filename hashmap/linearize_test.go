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
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/anishathalye/porcupine"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Quiescent-state checks cannot catch a return value that was only
// wrong mid-race, such as two racing Puts of the same key both
// reporting it absent. These tests record every call/return interval
// and ask porcupine for a legal sequential witness consistent with
// real-time order. A tight load factor keeps resizes in the mix for
// the striped map.

const (
	opPut int8 = iota
	opGet
	opRemove
)

// A mapOp is one recorded invocation against a map restricted to a
// small key range.
type mapOp struct {
	action int8
	key    int
	val    int
}

// A mapResult is the (value, ok) pair every map operation returns.
// The value is its type's zero when ok is false, matching the
// containers' contract, so outcomes compare with ==.
type mapResult struct {
	val int
	ok  bool
}

// mapModel steps one key's binding. Operations on distinct keys
// commute, so the history is partitioned per key and each partition
// is checked against a single mapResult of state. Every operation
// reports the key's prior binding, so an outcome is legal exactly
// when it equals the current state.
var mapModel = porcupine.Model{
	Partition: func(history []porcupine.Operation) [][]porcupine.Operation {
		byKey := map[int][]porcupine.Operation{}
		for _, op := range history {
			k := op.Input.(mapOp).key
			byKey[k] = append(byKey[k], op)
		}
		parts := make([][]porcupine.Operation, 0, len(byKey))
		for _, part := range byKey {
			parts = append(parts, part)
		}
		return parts
	},
	Init: func() interface{} { return mapResult{} },
	Step: func(state, input, output interface{}) (bool, interface{}) {
		st := state.(mapResult)
		op := input.(mapOp)
		if output.(mapResult) != st {
			return false, state
		}
		switch op.action {
		case opPut:
			return true, mapResult{val: op.val, ok: true}
		case opRemove:
			return true, mapResult{}
		default:
			return true, state
		}
	},
}

// recordMapHistory drives goroutines of random operations against m,
// stamping each invocation and response from a shared logical clock.
func recordMapHistory(m Map[int, int], goroutines, iters, keySpace int) []porcupine.Operation {
	var clock atomic.Int64
	perClient := make([][]porcupine.Operation, goroutines)

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(int64(i)))
			hist := make([]porcupine.Operation, 0, iters)
			for j := 0; j < iters; j++ {
				op := mapOp{
					action: int8(rng.Intn(3)),
					key:    rng.Intn(keySpace),
				}
				var out mapResult
				call := clock.Add(1)
				switch op.action {
				case opPut:
					// Nonzero values keep a stored value distinct
					// from the zero reported for an absent key.
					op.val = rng.Intn(100) + 1
					out.val, out.ok = m.Put(op.key, op.val)
				case opGet:
					out.val, out.ok = m.Get(op.key)
				default:
					out.val, out.ok = m.Remove(op.key)
				}
				hist = append(hist, porcupine.Operation{
					ClientId: i,
					Input:    op,
					Call:     call,
					Output:   out,
					Return:   clock.Add(1),
				})
			}
			perClient[i] = hist
			return nil
		})
	}
	// The workers return no errors; Wait only joins them.
	_ = g.Wait()

	var all []porcupine.Operation
	for _, hist := range perClient {
		all = append(all, hist...)
	}
	return all
}

func TestLinearizability(t *testing.T) {
	const (
		goroutines = 4
		iters      = 250
		keySpace   = 8
	)
	for _, impl := range mapImpls {
		t.Run(impl.name, func(t *testing.T) {
			r := require.New(t)
			m, err := impl.mk(WithBucketCount(2), WithStripeCount(2), WithLoadFactor(1))
			r.NoError(err)
			hist := recordMapHistory(m, goroutines, iters, keySpace)
			r.Len(hist, goroutines*iters)
			r.True(porcupine.CheckOperations(mapModel, hist),
				"no legal sequential witness for the recorded history")
		})
	}
}
