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

package strindex

import (
	"encoding/binary"

	"github.com/carbonfmt/carbon/internal/prehash"
)

// idKey is a fixed siphash key: the index's keys are already
// dictionary-assigned ids, not attacker-controlled input, so a stable
// process-wide key (rather than one randomized per Table, as dict
// does for its bloom filter) is enough to spread them across buckets.
var idKey = prehash.Key{0x5472696e69747931, 0x537472696e646578}

// HashID digests a uint64 string id with the same siphash primitive
// dict's bloom pre-filter uses (internal/prehash), so string ids
// spread evenly across buckets instead of colliding on their
// already-sequential low bits.
func HashID(id uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	return uint64(idKey.Sum(buf[:]))
}
