// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package prehash computes the single fast 64-bit digest that the
// string dictionary derives its bloom pre-filter lanes and its async
// partition selector from.
package prehash

import (
	"math/bits"

	"github.com/dchest/siphash"
)

// Digest is the 64-bit pre-hash of a key. Partition and Lanes both derive
// their bit/lane indices from one Digest so that hashing a key is
// only ever done once per occurrence.
type Digest uint64

// Key is a siphash key pinned per-dictionary-instance so that
// digests are not predictable across separate dictionaries (and so
// that two dictionaries built from the same input do not necessarily
// produce identical bloom filter bit patterns).
type Key [2]uint64

// Sum computes the digest of buf under k.
func (k Key) Sum(buf []byte) Digest {
	return Digest(siphash.Hash(k[0], k[1], buf))
}

// Lanes derives the 4 independent bloom-filter hash lanes specified
// by the dictionary's probabilistic filter: additive, xor, rotate,
// and "sax" (shift-add-xor) mixes of the single siphash digest, each
// reduced into [0, nbits).
func (d Digest) Lanes(nbits uint64) [4]uint64 {
	x := uint64(d)
	add := x + (x >> 17)
	xorv := x ^ (x << 13) ^ (x >> 7)
	rot := bits.RotateLeft64(x, 31)
	sax := (x << 5) + (x >> 2) ^ x
	var out [4]uint64
	for i, v := range [4]uint64{add, xorv, rot, sax} {
		out[i] = v % nbits
	}
	return out
}

// Partition reduces the digest to a partition index in [0, p) for the
// async dictionary's sharding.
func (d Digest) Partition(p int) int {
	return int(uint64(d) % uint64(p))
}
