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

package archive

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"

	"github.com/carbonfmt/carbon/carbonerr"
)

// objectIDCounterBits is how many low bits of a generated id come
// from the monotonic counter; the remaining high bits are a
// per-generator random seed (16 bits), so ids from two different
// archive builds are unlikely, though not certain, to differ even if
// both start their counters at zero (spec
// §4.5's "combines a per-thread seed with a monotonic counter").
const objectIDCounterBits = 48

// objectIDGen is the thread-safe object-id generator named in spec
// §4.5 and §5 ("Object-id generator: thread-safe counter; each call
// returns a unique id"). The zero value is not usable; use
// newObjectIDGen.
type objectIDGen struct {
	seed    uint64
	counter uint64
}

func newObjectIDGen() *objectIDGen {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	seed := binary.LittleEndian.Uint64(buf[:]) &^ ((uint64(1) << objectIDCounterBits) - 1)
	return &objectIDGen{seed: seed}
}

// next returns a fresh object id, or a Resource error tagged
// THREAD_OOO_OBJ_IDS once the counter's bit budget is exhausted (spec
// §4.5).
func (g *objectIDGen) next() (uint64, error) {
	c := atomic.AddUint64(&g.counter, 1) - 1
	if c >= (uint64(1) << objectIDCounterBits) {
		return 0, carbonerr.New(carbonerr.Resource, "archive.objectIDGen.next", "THREAD_OOO_OBJ_IDS: object id generator exhausted")
	}
	return g.seed | c, nil
}
