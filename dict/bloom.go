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

package dict

import "github.com/carbonfmt/carbon/internal/prehash"

// batchFilter is the ephemeral probabilistic filter built once per
// Insert call (spec §4.1): ~22 bits per not-yet-seen key, four
// independent hash lanes derived from a single siphash digest. A
// "definitely new" answer from test lets Insert skip the exact hash
// index lookup; a "maybe seen" answer forces it.
type batchFilter struct {
	bits  []uint64
	nbits uint64
}

func newBatchFilter(nNotFound int) *batchFilter {
	if nNotFound < 1 {
		nNotFound = 1
	}
	nbits := uint64(22 * nNotFound)
	nwords := (nbits + 63) / 64
	if nwords == 0 {
		nwords = 1
	}
	return &batchFilter{
		bits:  make([]uint64, nwords),
		nbits: nwords * 64,
	}
}

func (f *batchFilter) set(d prehash.Digest) {
	for _, lane := range d.Lanes(f.nbits) {
		f.bits[lane/64] |= 1 << (lane % 64)
	}
}

// maybeSeen returns false as soon as any one of the 4 lanes is unset,
// i.e. the key is definitely new.
func (f *batchFilter) maybeSeen(d prehash.Digest) bool {
	for _, lane := range d.Lanes(f.nbits) {
		if f.bits[lane/64]&(1<<(lane%64)) == 0 {
			return false
		}
	}
	return true
}
