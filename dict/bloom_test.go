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

import (
	"testing"

	"github.com/carbonfmt/carbon/internal/prehash"
)

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	f := newBatchFilter(64)
	key := randomKey()
	digests := make([]prehash.Digest, 64)
	for i := 0; i < 64; i++ {
		d := key.Sum([]byte{byte(i)})
		digests[i] = d
		f.set(d)
	}
	for i, d := range digests {
		if !f.maybeSeen(d) {
			t.Fatalf("set digest %d reported as definitely new", i)
		}
	}
}

func TestBloomFilterUnsetIsDefinitelyNew(t *testing.T) {
	f := newBatchFilter(16)
	key := randomKey()
	if f.maybeSeen(key.Sum([]byte("never-inserted"))) {
		// probabilistic: an empty filter must always answer "new"
		t.Fatalf("empty filter reported a digest as maybe-seen")
	}
}
