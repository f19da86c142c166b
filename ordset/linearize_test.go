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
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/anishathalye/porcupine"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Quiescent-state checks cannot catch a return value that was only
// wrong mid-race, such as two racing Adds of the same element both
// reporting it absent. These tests record every call/return interval
// and ask porcupine for a legal sequential witness consistent with
// real-time order.

const (
	opAdd int8 = iota
	opRemove
	opContains
)

// A setOp is one recorded invocation against a set restricted to a
// small element range.
type setOp struct {
	action int8
	elem   int
}

// setModel steps one element's membership. Operations on distinct
// elements commute, so the history is partitioned per element and
// each partition is checked against a single boolean of state.
var setModel = porcupine.Model{
	Partition: func(history []porcupine.Operation) [][]porcupine.Operation {
		byElem := map[int][]porcupine.Operation{}
		for _, op := range history {
			e := op.Input.(setOp).elem
			byElem[e] = append(byElem[e], op)
		}
		parts := make([][]porcupine.Operation, 0, len(byElem))
		for _, part := range byElem {
			parts = append(parts, part)
		}
		return parts
	},
	Init: func() interface{} { return false },
	Step: func(state, input, output interface{}) (bool, interface{}) {
		present := state.(bool)
		ok := output.(bool)
		switch input.(setOp).action {
		case opAdd:
			// Add succeeds exactly when the element was absent.
			return ok == !present, true
		case opRemove:
			return ok == present, false
		default:
			return ok == present, state
		}
	},
}

// recordSetHistory drives goroutines of random operations against s,
// stamping each invocation and response from a shared logical clock.
func recordSetHistory(s Set[int], goroutines, iters, keySpace int) []porcupine.Operation {
	var clock atomic.Int64
	perClient := make([][]porcupine.Operation, goroutines)

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(int64(i)))
			hist := make([]porcupine.Operation, 0, iters)
			for j := 0; j < iters; j++ {
				op := setOp{action: int8(rng.Intn(3)), elem: rng.Intn(keySpace)}
				call := clock.Add(1)
				var out bool
				switch op.action {
				case opAdd:
					out = s.Add(op.elem)
				case opRemove:
					out = s.Remove(op.elem)
				default:
					out = s.Contains(op.elem)
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
	for _, impl := range impls {
		t.Run(impl.name, func(t *testing.T) {
			r := require.New(t)
			hist := recordSetHistory(impl.mk(), goroutines, iters, keySpace)
			r.Len(hist, goroutines*iters)
			r.True(porcupine.CheckOperations(setModel, hist),
				"no legal sequential witness for the recorded history")
		})
	}
}
