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
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// A Hasher maps a key to a 64-bit hash code. It must be pure: equal
// keys must produce equal codes for the life of the map. Hashers run
// outside any lock, so they must not touch shared mutable state.
type Hasher[K comparable] func(K) uint64

// StringHasher hashes string keys with xxHash.
func StringHasher(key string) uint64 {
	return xxhash.Sum64String(key)
}

// NumericHasher returns a [Hasher] for fixed-width integer keys,
// feeding the key's little-endian encoding through xxHash. Feeding the
// bytes through a real hash matters: sequential keys would otherwise
// land in sequential buckets and defeat lock striping.
func NumericHasher[K ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr]() Hasher[K] {
	return func(key K) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return xxhash.Sum64(buf[:])
	}
}
